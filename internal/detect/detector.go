// Package detect classifies municipal documents by type and category.
//
// Classification drives the chunking strategy downstream, so the rules are
// deliberately simple and auditable: ordered, case-insensitive keyword checks
// over the filename and document text, first match wins.
package detect

import "strings"

// Document types produced by Detect.
const (
	TypeFormulario string = "formulario"
	TypeLey        string = "ley"
	TypeOrdenanza  string = "ordenanza"
	TypeDecreto    string = "decreto"
	TypeReglamento string = "reglamento"
	TypeGuia       string = "guia"
	TypeGeneral    string = "documento_general"
)

// Document categories produced by Detect.
const (
	CategoryComercio    string = "comercio"
	CategoryNormativa   string = "normativa"
	CategoryInformacion string = "informacion"
	CategoryGeneral     string = "general"
)

// Detection holds the classification result for one document.
type Detection struct {
	Type     string
	Category string
	Metadata map[string]any
}

// Detect classifies a document from its filename and extracted text.
// Rules are evaluated in priority order; the first matching rule wins.
func Detect(filename, text string) Detection {
	fn := strings.ToLower(filename)
	body := strings.ToLower(text)

	if containsAny(fn, "formato", "formulario", "solicitud") {
		return detectForm(fn, body)
	}

	if strings.Contains(fn, "ley") || strings.Contains(body, "ley n°") || strings.Contains(body, "ley nº") {
		return detectLaw(fn, body)
	}

	if strings.Contains(fn, "ordenanza") || strings.Contains(body, "ordenanza") {
		return Detection{
			Type:     TypeOrdenanza,
			Category: CategoryNormativa,
			Metadata: map[string]any{
				"palabras_clave": []string{"ordenanza", "municipalidad", "normativa"},
			},
		}
	}

	if strings.Contains(fn, "decreto") || strings.Contains(body, "decreto") {
		return Detection{
			Type:     TypeDecreto,
			Category: CategoryNormativa,
			Metadata: map[string]any{
				"palabras_clave": []string{"decreto", "alcaldía", "municipalidad"},
			},
		}
	}

	if strings.Contains(fn, "reglamento") || strings.Contains(body, "reglamento") {
		return Detection{
			Type:     TypeReglamento,
			Category: CategoryNormativa,
			Metadata: map[string]any{
				"palabras_clave": []string{"reglamento", "normativa"},
			},
		}
	}

	if containsAny(fn, "triptico", "guia") {
		return Detection{
			Type:     TypeGuia,
			Category: CategoryInformacion,
			Metadata: map[string]any{
				"palabras_clave": []string{"información", "guía", "trámite"},
			},
		}
	}

	return Detection{
		Type:     TypeGeneral,
		Category: CategoryGeneral,
		Metadata: map[string]any{
			"palabras_clave": []string{"documento", "municipal"},
		},
	}
}

// detectForm resolves the specific procedure a form belongs to by scanning
// both the filename and the document body.
func detectForm(fn, body string) Detection {
	tramite := "Formulario General"
	keywords := []string{"formulario"}

	switch {
	case strings.Contains(fn, "bodega") || strings.Contains(body, "bodega"):
		tramite = "Licencia Provisional de Funcionamiento para Bodegas"
		keywords = append(keywords, "bodega", "licencia", "provisional")
	case strings.Contains(fn, "ambulatorio") || strings.Contains(body, "ambulatorio"):
		tramite = "Autorización de Comercio Ambulatorio"
		keywords = append(keywords, "ambulante", "comercio", "calle", "permiso")
	case strings.Contains(fn, "licencia") || strings.Contains(fn, "funcionamiento"):
		tramite = "Licencia de Funcionamiento"
		keywords = append(keywords, "licencia", "funcionamiento", "comercio")
	}

	return Detection{
		Type:     TypeFormulario,
		Category: CategoryComercio,
		Metadata: map[string]any{
			"nombre_tramite": tramite,
			"palabras_clave": keywords,
		},
	}
}

// detectLaw resolves known statutes by their numeric identifiers.
func detectLaw(fn, body string) Detection {
	nombre := "Ley"
	numero := ""
	keywords := []string{"ley", "normativa", "artículos"}

	switch {
	case strings.Contains(fn, "27972") || strings.Contains(fn, "municipalidades"):
		nombre = "Ley Orgánica de Municipalidades"
		numero = "27972"
		keywords = append(keywords, "municipalidades", "orgánica")
	case strings.Contains(fn, "1200"):
		nombre = "Decreto Legislativo 1200"
		numero = "1200"
	}

	return Detection{
		Type:     TypeLey,
		Category: CategoryNormativa,
		Metadata: map[string]any{
			"nombre_norma":   nombre,
			"numero_norma":   numero,
			"palabras_clave": keywords,
		},
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
