package features

import "github.com/synaptica-ai/afi-risk/pkg/clinical"

type Kind string

const (
	KindNumeric Kind = "numeric"
	KindBinary  Kind = "binary"
	KindCoded   Kind = "coded"
)

// Bounds are advisory limits for the collection form, not clinical validation.
type Bounds struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
}

// FieldSpec describes how one raw input becomes a model feature.
// Binary fields encode Positive as 1 and Negative as 0.
type FieldSpec struct {
	Name         string  `json:"name"`
	Label        string  `json:"label"`
	Kind         Kind    `json:"kind"`
	Table        string  `json:"table,omitempty"`
	Positive     string  `json:"positive,omitempty"`
	Negative     string  `json:"negative,omitempty"`
	DefaultLabel string  `json:"default_label,omitempty"`
	Bounds       *Bounds `json:"bounds,omitempty"`
}

type Schema []FieldSpec

func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

func numeric(name, label string, min, max, def float64) FieldSpec {
	return FieldSpec{Name: name, Label: label, Kind: KindNumeric, Bounds: &Bounds{Min: min, Max: max, Default: def}}
}

func binary(name, label, positive, negative string) FieldSpec {
	return FieldSpec{Name: name, Label: label, Kind: KindBinary, Positive: positive, Negative: negative, DefaultLabel: negative}
}

func coded(name, label, table, def string) FieldSpec {
	return FieldSpec{Name: name, Label: label, Kind: KindCoded, Table: table, DefaultLabel: def}
}

// DefaultSchema is the AFI with thrombocytopenia admission form.
func DefaultSchema() Schema {
	return Schema{
		numeric("Age", "Age", 0, 120, 45),
		{Name: "Sex", Label: "Sex", Kind: KindBinary, Positive: "Male", Negative: "Female", DefaultLabel: "Male"},
		numeric("Duration of illness at the time of admission (days)", "Duration of illness at admission (days)", 0, 60, 3),
		numeric("Duration of hospital stay (days)", "Duration of hospital stay (days)", 0, 60, 5),
		binary("Requirement for ICU at admission", "Requirement for ICU at admission", "Yes", "No"),
		coded("Airway & breathing", "Airway & Breathing", clinical.TableAirway, "Stable"),
		binary("Circulation", "Circulation", "Unstable", "Stable"),
		binary("Respiratory system", "Respiratory system", "Abnormal", "Normal"),
		binary("Cardiovascular system", "Cardiovascular system", "Abnormal", "Normal"),
		coded("Renal", "Renal", clinical.TableRenal, "Normal"),
		coded("Hematological", "Hematological", clinical.TableHematological, "Normal"),
		coded("Gastrointestinal and Hepatic", "Gastrointestinal and Hepatic", clinical.TableGI, "Normal"),
		binary("Nervous system", "Nervous System", "Abnormal", "Normal"),
		coded("CO-MORBIDITY", "Co-Morbidity", clinical.TableComorbidity, "Systemic Hypertension"),
		coded("Complications", "Complications", clinical.TableComplications, "Myalgia"),
		numeric("GRBS/ random blood sugar (mg/dL)", "GRBS (mg/dL)", 0, 500, 120),
		numeric("Total protein (g/dl)", "Total Protein (g/dl)", 0, 10, 6.5),
		numeric("Serum albumin (g/dl)", "Serum Albumin (g/dl)", 0, 5, 3.5),
		numeric("Prothrombin time (PT)", "Prothrombin Time (PT)", 5, 50, 12.5),
		numeric("Activated partial thromboplastin time (APTT)", "APTT", 5, 80, 30),
		numeric("Urea (mg/dL)", "Urea (mg/dL)", 0, 200, 30),
		numeric("Sodium (mM/l)", "Sodium (mM/l)", 100, 180, 135),
		numeric("Potassium (mM/l)", "Potassium (mM/l)", 2, 6, 4),
		numeric("pH", "pH", 6.5, 8, 7.4),
		numeric("PO2 (mmHg)", "PO2 (mmHg)", 0, 200, 90),
		numeric("PCO2 (mmHg)", "PCO2 (mmHg)", 10, 80, 40),
		numeric("Bicarb (mmol/l)", "Bicarbonate (mmol/l)", 5, 40, 22),
		numeric("Lactate (mol/L)", "Lactate (mol/L)", 0, 15, 1.2),
		numeric("CPK (U/L)", "CPK (U/L)", 0, 10000, 150),
		numeric("CPK-MB (U/L)", "CPK-MB (U/L)", 0, 1000, 25),
		numeric("CRP (mg/L)", "CRP (mg/L)", 0, 400, 10),
		numeric("Procalcitonin (ng/ml)", "Procalcitonin (ng/ml)", 0, 100, 0.5),
		numeric("Serum ferritin (ng/ml)", "Serum Ferritin (ng/ml)", 0, 5000, 200),
		numeric("LDH (U/L)", "LDH (U/L)", 0, 2000, 300),
		numeric("d Dimer (mcg/ml)", "D-Dimer (mcg/ml)", 0, 50, 0.8),
		binary("USG abdomen", "USG Abdomen", "Abnormal", "Normal"),
		coded("ECHO", "ECHO", clinical.TableEcho, "Normal"),
		numeric("Hemoglobin", "Hemoglobin (g/dL)", 0, 20, 12),
		numeric("Platelet", "Platelet (/mm3)", 0, 600000, 140000),
		numeric("Total leukocyte count", "Total Leukocyte Count", 0, 30000, 8000),
		numeric("Total bilirubin", "Total Bilirubin", 0, 20, 1),
		numeric("Direct bilirubin", "Direct Bilirubin", 0, 10, 0.5),
		numeric("AST", "AST (U/L)", 0, 1000, 50),
		numeric("ALT", "ALT (U/L)", 0, 1000, 50),
		numeric("Creatinine", "Creatinine", 0, 20, 1),
	}
}

// FormField is a FieldSpec with its selectable options resolved.
type FormField struct {
	FieldSpec
	Options []string `json:"options,omitempty"`
}

// Form lists the fields with the exact labels each coded or binary field accepts.
func (s Schema) Form(enc *clinical.Encoder) []FormField {
	out := make([]FormField, 0, len(s))
	for _, f := range s {
		field := FormField{FieldSpec: f}
		switch f.Kind {
		case KindBinary:
			field.Options = []string{f.Negative, f.Positive}
			if f.DefaultLabel == f.Positive {
				field.Options = []string{f.Positive, f.Negative}
			}
		case KindCoded:
			field.Options = enc.Labels(f.Table)
		}
		out = append(out, field)
	}
	return out
}

// DefaultRecord fills every field with its form default.
func (s Schema) DefaultRecord() Record {
	rec := make(Record, len(s))
	for _, f := range s {
		switch f.Kind {
		case KindNumeric:
			if f.Bounds != nil {
				rec[f.Name] = Number(f.Bounds.Default)
			}
		default:
			rec[f.Name] = Label(f.DefaultLabel)
		}
	}
	return rec
}
