package rag

import "strings"

// Canned responses for meta questions about the assistant itself. These are
// matched before any retrieval so they never consume embedding quota.

var helpKeywords = []string{
	"ayuda", "ayúdame", "qué puedes hacer", "que puedes hacer",
	"qué temas", "que temas", "sobre qué", "sobre que",
	"de qué", "de que", "help", "opciones", "menú", "menu",
}

var faqKeywords = []string{"faq", "preguntas frecuentes", "consultas frecuentes"}

var ragHelpKeywords = []string{"ayuda con el rag", "como preguntar", "cómo preguntar", "mejores preguntas"}

var topicsKeywords = []string{"temas disponibles", "temas que manejas", "sobre qué sabes"}

// cannedResponse returns a prebuilt answer for meta questions, or nil when
// the question should go through retrieval. Rules are checked in order, so
// the broad help keywords win over the more specific ones.
func cannedResponse(question string) *Response {
	q := strings.ToLower(strings.TrimSpace(question))

	if containsAny(q, helpKeywords) {
		return &Response{Answer: helpAnswer, DocumentName: "Sistema de Ayuda", Sources: []string{}}
	}
	if containsAny(q, faqKeywords) {
		return &Response{Answer: faqAnswer, DocumentName: "Preguntas Frecuentes", Sources: []string{}}
	}
	if containsAny(q, ragHelpKeywords) {
		return &Response{Answer: ragHelpAnswer, DocumentName: "Guía de Uso del RAG", Sources: []string{}}
	}
	if containsAny(q, topicsKeywords) {
		return &Response{Answer: topicsAnswer, DocumentName: "Catálogo de Temas", Sources: []string{}}
	}

	return nil
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

const helpAnswer = `
<div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 20px; border-radius: 10px; color: white; margin-bottom: 15px;">
    <h2 style="margin: 0 0 10px 0; font-size: 24px;">Asistente de Trámites Municipales</h2>
    <p style="margin: 0; opacity: 0.9;">Tu guía inteligente para procedimientos del municipio</p>
</div>

<p><strong>📋 CONSULTAS FRECUENTES</strong></p>
<p>Haz clic o escribe una de estas opciones para obtener ayuda rápida:</p>

<div style="display: grid; gap: 10px; margin: 15px 0;">
    <div style="background: #f0f9ff; padding: 12px; border-radius: 8px; border-left: 4px solid #3b82f6;">
        <strong>1️⃣ Preguntas Frecuentes</strong><br/>
        <em style="color: #64748b;">Consultas más comunes sobre trámites</em>
    </div>

    <div style="background: #fef3c7; padding: 12px; border-radius: 8px; border-left: 4px solid #f59e0b;">
        <strong>2️⃣ Ayuda con el RAG</strong><br/>
        <em style="color: #64748b;">Aprende a hacer mejores preguntas</em>
    </div>

    <div style="background: #f0fdf4; padding: 12px; border-radius: 8px; border-left: 4px solid #10b981;">
        <strong>3️⃣ Temas disponibles</strong><br/>
        <em style="color: #64748b;">Lista de todos los temas que manejo</em>
    </div>
</div>

<p style="margin-top: 20px;"><strong>💡 Ejemplos de preguntas directas:</strong></p>
<ul style="line-height: 1.8;">
    <li>"¿Cómo saco una licencia de funcionamiento para una bodega?"</li>
    <li>"¿Qué requisitos necesito para comercio ambulatorio?"</li>
    <li>"¿Cuánto cuesta una licencia provisional?"</li>
    <li>"¿Dónde descargo el formato de solicitud?"</li>
</ul>

<p style="background: #fef2f2; padding: 10px; border-radius: 6px; border-left: 3px solid #ef4444;">
    ⚠️ <strong>Importante:</strong> Solo puedo responder preguntas sobre trámites municipales basándome en los documentos oficiales cargados.
</p>`

const faqAnswer = `
<h3 style="color: #3b82f6; margin-bottom: 15px;">Preguntas Frecuentes</h3>

<details style="margin-bottom: 15px; padding: 12px; background: #f8fafc; border-radius: 8px;">
    <summary style="cursor: pointer; font-weight: bold; color: #1e40af;">¿Qué tipos de licencias puedo solicitar?</summary>
    <p style="margin-top: 10px; padding-left: 10px;">Puedes solicitar licencias de funcionamiento (bodegas, restaurantes, comercios), permisos de construcción, autorizaciones de comercio ambulatorio, y más. Pregúntame específicamente sobre el tipo que necesitas.</p>
</details>

<details style="margin-bottom: 15px; padding: 12px; background: #f8fafc; border-radius: 8px;">
    <summary style="cursor: pointer; font-weight: bold; color: #1e40af;">¿Cuánto demora una licencia de funcionamiento?</summary>
    <p style="margin-top: 10px; padding-left: 10px;">Los tiempos varían según el tipo de licencia. Pregúntame específicamente sobre la licencia que necesitas para darte información precisa sobre plazos.</p>
</details>

<details style="margin-bottom: 15px; padding: 12px; background: #f8fafc; border-radius: 8px;">
    <summary style="cursor: pointer; font-weight: bold; color: #1e40af;">¿Qué documentos necesito presentar?</summary>
    <p style="margin-top: 10px; padding-left: 10px;">Los requisitos dependen del trámite. Pregúntame sobre el trámite específico (ejemplo: "requisitos para licencia de bodega") para obtener la lista completa.</p>
</details>

<details style="margin-bottom: 15px; padding: 12px; background: #f8fafc; border-radius: 8px;">
    <summary style="cursor: pointer; font-weight: bold; color: #1e40af;">¿Dónde descargo los formularios?</summary>
    <p style="margin-top: 10px; padding-left: 10px;">Pregúntame sobre el formulario específico que necesitas (ejemplo: "formato de licencia de bodega") y te indicaré dónde encontrarlo.</p>
</details>

<details style="margin-bottom: 15px; padding: 12px; background: #f8fafc; border-radius: 8px;">
    <summary style="cursor: pointer; font-weight: bold; color: #1e40af;">¿Cuáles son los costos de los trámites?</summary>
    <p style="margin-top: 10px; padding-left: 10px;">Los costos varían según el tipo de trámite y categoría. Consulta específicamente sobre el trámite que te interesa.</p>
</details>

<p style="margin-top: 20px; padding: 12px; background: #dbeafe; border-radius: 8px;">
    <strong>💬 ¿No encontraste tu pregunta?</strong><br/>
    Escríbela directamente y te ayudaré con la información disponible.
</p>`

const ragHelpAnswer = `
<h3 style="color: #f59e0b; margin-bottom: 15px;">🤖 Cómo usar el Asistente RAG</h3>

<div style="background: #fffbeb; padding: 15px; border-radius: 8px; border-left: 4px solid #f59e0b; margin-bottom: 15px;">
    <strong>¿Qué es RAG?</strong>
    <p>RAG (Retrieval Augmented Generation) significa que busco información en documentos oficiales y genero respuestas basadas en esos datos reales.</p>
</div>

<h4 style="color: #10b981; margin-top: 20px;">✅ Consejos para mejores resultados:</h4>

<div style="background: #f0fdf4; padding: 12px; border-radius: 8px; margin: 10px 0;">
    <strong>1. Sé específico</strong>
    <ul>
        <li>❌ Malo: "Necesito una licencia"</li>
        <li>✅ Bueno: "¿Qué requisitos necesito para una licencia de bodega?"</li>
    </ul>
</div>

<div style="background: #f0fdf4; padding: 12px; border-radius: 8px; margin: 10px 0;">
    <strong>2. Usa palabras clave relacionadas</strong>
    <ul>
        <li>✅ "licencia", "permiso", "requisitos", "formulario", "trámite"</li>
        <li>✅ "bodega", "restaurante", "comercio", "ambulante"</li>
    </ul>
</div>

<div style="background: #f0fdf4; padding: 12px; border-radius: 8px; margin: 10px 0;">
    <strong>3. Haz preguntas directas</strong>
    <ul>
        <li>✅ "¿Cómo saco...?"</li>
        <li>✅ "¿Qué necesito para...?"</li>
        <li>✅ "¿Cuánto cuesta...?"</li>
        <li>✅ "¿Dónde encuentro...?"</li>
    </ul>
</div>

<div style="background: #f0fdf4; padding: 12px; border-radius: 8px; margin: 10px 0;">
    <strong>4. Una pregunta a la vez</strong>
    <ul>
        <li>❌ Malo: "¿Cómo saco licencia, cuánto cuesta y dónde la tramito?"</li>
        <li>✅ Bueno: "¿Cómo saco una licencia de funcionamiento?" (luego pregunta el costo)</li>
    </ul>
</div>

<h4 style="color: #ef4444; margin-top: 20px;">❌ Lo que NO puedo hacer:</h4>
<ul style="background: #fef2f2; padding: 15px; border-radius: 8px;">
    <li>Responder preguntas fuera del ámbito municipal</li>
    <li>Inventar información que no esté en los documentos</li>
    <li>Procesar solicitudes o trámites directamente</li>
    <li>Acceder a información personal o expedientes</li>
</ul>

<div style="background: #dbeafe; padding: 15px; border-radius: 8px; margin-top: 20px;">
    <strong>💡 Tip Pro:</strong> Si no obtienes una buena respuesta, reformula tu pregunta de manera más específica o usa sinónimos.
</div>`

const topicsAnswer = `
<h3 style="color: #10b981; margin-bottom: 15px;">📚 Temas Disponibles</h3>

<div style="display: grid; gap: 12px;">
    <div style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 15px; border-radius: 8px; color: white;">
        <strong style="font-size: 18px;">🏪 Licencias de Funcionamiento</strong>
        <ul style="margin: 10px 0 0 20px; opacity: 0.95;">
            <li>Licencias para bodegas</li>
            <li>Licencias para restaurantes</li>
            <li>Licencias para comercios en general</li>
            <li>Licencias provisionales</li>
        </ul>
    </div>

    <div style="background: linear-gradient(135deg, #f093fb 0%, #f5576c 100%); padding: 15px; border-radius: 8px; color: white;">
        <strong style="font-size: 18px;">🛒 Comercio y Permisos</strong>
        <ul style="margin: 10px 0 0 20px; opacity: 0.95;">
            <li>Autorización de comercio ambulatorio</li>
            <li>Permisos de eventos</li>
            <li>Ocupación de vía pública</li>
        </ul>
    </div>

    <div style="background: linear-gradient(135deg, #4facfe 0%, #00f2fe 100%); padding: 15px; border-radius: 8px; color: white;">
        <strong style="font-size: 18px;">📋 Documentación y Requisitos</strong>
        <ul style="margin: 10px 0 0 20px; opacity: 0.95;">
            <li>Formularios oficiales</li>
            <li>Requisitos por tipo de trámite</li>
            <li>Documentos necesarios</li>
        </ul>
    </div>

    <div style="background: linear-gradient(135deg, #fa709a 0%, #fee140 100%); padding: 15px; border-radius: 8px; color: white;">
        <strong style="font-size: 18px;">⚖️ Normativa Legal</strong>
        <ul style="margin: 10px 0 0 20px; opacity: 0.95;">
            <li>Ordenanzas municipales</li>
            <li>Leyes aplicables</li>
            <li>Decretos y reglamentos</li>
        </ul>
    </div>

    <div style="background: linear-gradient(135deg, #a8edea 0%, #fed6e3 100%); padding: 15px; border-radius: 8px; color: #1f2937;">
        <strong style="font-size: 18px;">⏱️ Procedimientos Administrativos</strong>
        <ul style="margin: 10px 0 0 20px;">
            <li>Plazos de aprobación</li>
            <li>Costos y tasas</li>
            <li>Pasos del trámite</li>
        </ul>
    </div>
</div>

<p style="margin-top: 20px; padding: 15px; background: #fef3c7; border-radius: 8px; border-left: 4px solid #f59e0b;">
    <strong>📌 Nota:</strong> La información disponible depende de los documentos oficiales que han sido cargados al sistema. Si no encuentro información sobre un tema, te lo indicaré.
</p>`

const noInformationAnswer = `<p>Lo siento, no encontré información específica en mis documentos sobre tu consulta.</p><p>Si tu pregunta está relacionada con trámites municipales, te recomiendo:</p><ul><li>Reformular tu pregunta de manera más específica</li><li>Contactar directamente con la municipalidad</li><li>Verificar que la información esté disponible en los documentos cargados</li></ul>`
