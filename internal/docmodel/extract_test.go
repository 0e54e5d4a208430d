package docmodel

import "testing"

func TestMaterialsExtraction(t *testing.T) {
	m := Build(RawDocument{Paragraphs: []string{
		"Elution Buffer was prepared fresh. Catalog: EB-100, Supplier: Acme Labs, Lot: L-2231",
		"Wash Solution reagent, supplier: Bio Corp",
		"The sample was vortexed for 30 seconds.",
	}}, nil)

	mats := m.Materials()
	if len(mats) != 2 {
		t.Fatalf("materials = %d, want 2", len(mats))
	}
	if mats[0].Name != "Elution Buffer" || mats[0].CatalogNumber != "EB-100" {
		t.Errorf("first material = %+v", mats[0])
	}
	if mats[0].Supplier != "Acme Labs" || mats[0].LotNumber != "L-2231" {
		t.Errorf("first material fields = %+v", mats[0])
	}
	if mats[1].CatalogNumber != "" {
		t.Errorf("second material catalog = %q, want missing", mats[1].CatalogNumber)
	}
}

func TestEquipmentExtraction(t *testing.T) {
	m := Build(RawDocument{Paragraphs: []string{
		"Plate Incubator instrument, configuration: shaking, model: PI-7, serial: SN-44",
		"Spin Centrifuge device, configuration: None",
	}}, nil)

	eqs := m.Equipment()
	if len(eqs) != 2 {
		t.Fatalf("equipment = %d, want 2", len(eqs))
	}
	if eqs[0].Name != "Plate Incubator" || eqs[0].Configuration != "shaking" {
		t.Errorf("first equipment = %+v", eqs[0])
	}
	if eqs[0].ModelNumber != "PI-7" || eqs[0].SerialNumber != "SN-44" {
		t.Errorf("first equipment fields = %+v", eqs[0])
	}
	// "None" normalizes to missing so it shows up as a gap.
	if eqs[1].Configuration != "" {
		t.Errorf("None configuration = %q, want empty", eqs[1].Configuration)
	}

	records := m.GapRecords()
	var equipGaps int
	for _, r := range records {
		if r.Kind == "equipment" {
			equipGaps++
			if r.FieldName != "configuration" || r.Status != "invalid" {
				t.Errorf("equipment gap = %+v", r)
			}
		}
	}
	if equipGaps != 1 {
		t.Errorf("equipment gaps = %d, want 1", equipGaps)
	}
}
