package docmodel

import (
	"regexp"
	"strings"
)

// Materials and equipment are pulled out of paragraph text so their
// domain-specific required fields (catalog number, configuration) can feed
// the gap list alongside table cells.

type Material struct {
	Name          string `json:"name"`
	CatalogNumber string `json:"catalog_number,omitempty"`
	Supplier      string `json:"supplier,omitempty"`
	LotNumber     string `json:"lot_number,omitempty"`
}

type Equipment struct {
	Name          string `json:"name"`
	Configuration string `json:"configuration,omitempty"`
	ModelNumber   string `json:"model_number,omitempty"`
	SerialNumber  string `json:"serial_number,omitempty"`
}

var (
	materialNameRe  = regexp.MustCompile(`([A-Z][a-zA-Z\s]+(?:Solution|Buffer|Reagent|Material))`)
	equipmentNameRe = regexp.MustCompile(`([A-Z][a-zA-Z\s]+(?:Incubator|Centrifuge|Chamber|Device|System))`)
	catalogRe       = regexp.MustCompile(`(?i)catalog[:\s]+([A-Z0-9\-]+)`)
	supplierRe      = regexp.MustCompile(`(?i)supplier[:\s]+([A-Za-z\s\-]+)`)
	lotRe           = regexp.MustCompile(`(?i)lot[:\s]+([A-Z0-9\-]+)`)
	configRe        = regexp.MustCompile(`(?i)configuration[:\s]+([A-Za-z\s\-]+)`)
	modelRe         = regexp.MustCompile(`(?i)model[:\s]+([A-Z0-9\-]+)`)
	serialRe        = regexp.MustCompile(`(?i)serial[:\s]+([A-Z0-9\-]+)`)
)

var materialKeywords = []string{"material", "reagent", "buffer", "solution"}
var equipmentKeywords = []string{"equipment", "instrument", "device", "apparatus"}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func firstGroup(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func extractMaterial(text string) (Material, bool) {
	m := Material{
		Name:          firstGroup(materialNameRe, text),
		CatalogNumber: firstGroup(catalogRe, text),
		Supplier:      firstGroup(supplierRe, text),
		LotNumber:     firstGroup(lotRe, text),
	}
	return m, m.Name != ""
}

func extractEquipment(text string) (Equipment, bool) {
	e := Equipment{
		Name:          firstGroup(equipmentNameRe, text),
		Configuration: firstGroup(configRe, text),
		ModelNumber:   firstGroup(modelRe, text),
		SerialNumber:  firstGroup(serialRe, text),
	}
	if strings.EqualFold(e.Configuration, "none") {
		e.Configuration = ""
	}
	return e, e.Name != ""
}

// Materials scans the model's paragraphs for material descriptions.
func (m *Model) Materials() []Material {
	var out []Material
	for _, p := range m.Paragraphs {
		lower := strings.ToLower(p.Text)
		if !containsAny(lower, materialKeywords) {
			continue
		}
		if mat, ok := extractMaterial(p.Text); ok {
			out = append(out, mat)
		}
	}
	return out
}

// Equipment scans the model's paragraphs for equipment descriptions.
func (m *Model) Equipment() []Equipment {
	var out []Equipment
	for _, p := range m.Paragraphs {
		lower := strings.ToLower(p.Text)
		if !containsAny(lower, equipmentKeywords) {
			continue
		}
		if eq, ok := extractEquipment(p.Text); ok {
			out = append(out, eq)
		}
	}
	return out
}
