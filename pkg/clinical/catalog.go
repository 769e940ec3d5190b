package clinical

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Code table names used by the default feature schema.
const (
	TableAirway        = "airway"
	TableRenal         = "renal"
	TableHematological = "hematological"
	TableGI            = "gastrointestinal"
	TableComorbidity   = "comorbidity"
	TableComplications = "complications"
	TableEcho          = "echo"
)

// Entry maps one selectable label to its severity code. 0 is baseline, higher is worse.
type Entry struct {
	Label string  `yaml:"label" json:"label"`
	Code  float64 `yaml:"code" json:"code"`
}

// CodeTable keeps entries in presentation order.
type CodeTable struct {
	Name    string  `yaml:"name" json:"name"`
	Entries []Entry `yaml:"entries" json:"entries"`
}

type Range struct {
	Low  float64 `yaml:"low" json:"low"`
	High float64 `yaml:"high" json:"high"`
}

// Catalog is the static clinical configuration: category codes, lab reference
// ranges and the action hints shown next to abnormal contributors.
type Catalog struct {
	Tables           []CodeTable       `yaml:"tables" json:"tables"`
	ReferenceRanges  map[string]Range  `yaml:"reference_ranges" json:"reference_ranges"`
	ActionHints      map[string]string `yaml:"action_hints" json:"action_hints"`
	CategoricalHints map[string]string `yaml:"categorical_hints" json:"categorical_hints"`
}

func Load(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Catalog{}, fmt.Errorf("reading clinical catalog: %w", err)
	}
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, fmt.Errorf("decoding clinical catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}

func (c Catalog) Validate() error {
	if len(c.Tables) == 0 {
		return errors.New("clinical catalog has no code tables")
	}
	names := make(map[string]struct{}, len(c.Tables))
	for _, table := range c.Tables {
		if table.Name == "" {
			return errors.New("code table without name")
		}
		if _, dup := names[table.Name]; dup {
			return fmt.Errorf("duplicate code table %q", table.Name)
		}
		names[table.Name] = struct{}{}
		if len(table.Entries) == 0 {
			return fmt.Errorf("code table %q is empty", table.Name)
		}
		labels := make(map[string]struct{}, len(table.Entries))
		for _, e := range table.Entries {
			if _, dup := labels[e.Label]; dup {
				return fmt.Errorf("code table %q: duplicate label %q", table.Name, e.Label)
			}
			labels[e.Label] = struct{}{}
			if math.IsNaN(e.Code) || math.IsInf(e.Code, 0) || e.Code < 0 {
				return fmt.Errorf("code table %q: label %q has invalid code %v", table.Name, e.Label, e.Code)
			}
		}
	}
	for feature, r := range c.ReferenceRanges {
		if r.Low > r.High {
			return fmt.Errorf("reference range for %q has low > high", feature)
		}
	}
	return nil
}

// Table returns the named code table.
func (c Catalog) Table(name string) (CodeTable, bool) {
	for _, t := range c.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return CodeTable{}, false
}

func DefaultCatalog() Catalog {
	return Catalog{
		Tables: []CodeTable{
			{Name: TableAirway, Entries: []Entry{
				{"Ventilation", 10},
				{"Intubation", 9.25},
				{"Low oxygen", 7.52},
				{"Stable", 0},
			}},
			{Name: TableRenal, Entries: []Entry{
				{"Dialysis", 10},
				{"AKI", 0.67},
				{"Normal", 0},
			}},
			{Name: TableHematological, Entries: []Entry{
				{"Need for blood products", 10},
				{"Bleeding from the skin or mucosa", 0.53},
				{"Normal", 0},
			}},
			{Name: TableGI, Entries: []Entry{
				{"Liver failure", 10},
				{"Decreased intestine movement", 0.4991},
				{"Jaundice", 0.2894},
				{"Normal", 0},
			}},
			{Name: TableComorbidity, Entries: []Entry{
				{"Systemic Hypertension", 0},
				{"Smoking", 0},
				{"Chronic Obstructive Pulmonary Disease", 0},
				{"Alcohol dependence", 0},
				{"Asthma", 0},
				{"Diabetes Mellitus", 0.3214},
				{"Hypertension, Diabetes Mellitus", 0.3214},
				{"Hypertension, Ischemic Heart Disease (IHD)", 0.3214},
				{"Hypertension, CKI (Chronic Kidney Insufficiency)", 0.3214},
				{"Diabetes Mellitus, Hypertension, Chronic Liver Disease", 0.3214},
				{"Diabetes Mellitus, IHD, Hypothyroidism", 0.3214},
				{"Diabetes Mellitus, Hypertension, IHD", 0.3214},
				{"Hypothyroidism, Hypertension, Diabetes Mellitus, IHD", 0.3214},
				{"Diabetes Mellitus, Portal Hypertension", 0.3214},
				{"Hypertension, IHD, Diabetes Mellitus", 0.3214},
				{"Chronic Liver Disease", 0.3214},
				{"Chronic Liver Disease, Hypertension", 0.3214},
				{"Chronic Liver Disease, Hypertension, Chronic Pulmonary Disease", 0.3214},
				{"Diabetes Mellitus, Systemic Hypertension", 0.3214},
				{"Systemic Hypertension, IHD, Diabetes Mellitus", 0.3214},
				{"Diabetes Mellitus, Hypertension, Left Lower Lobe Pneumonia", 0.3214},
				{"Hypertension, Diabetes Mellitus, IHD, Chronic Kidney Disease (CKD)", 0.3214},
				{"CKD", 10},
				{"MODS (Multiple Organ Dysfunction Syndrome)", 10},
				{"MODS, IHD", 10},
				{"CKD, Chronic Liver Disease", 10},
				{"CKD, Diabetes Mellitus", 10},
				{"Systemic Hypertension, CKD, IHD", 10},
			}},
			{Name: TableComplications, Entries: []Entry{
				{"Myalgia", 0},
				{"Reduced Appetite", 0},
				{"Abdominal Pain", 0.32154},
				{"Right Lower Limb Swelling", 0.32154},
				{"Left Lower Limb Cellulitis", 0.32154},
				{"Abdominal Distension", 0.32154},
				{"Systemic Hypertension", 0.32154},
				{"Chest Pain, Dyspnea, Tachypnea", 0.32154},
				{"AKI", 10},
				{"ARDS", 10},
				{"Chronic Liver Disease", 10},
				{"Chronic Obstructive Pulmonary Disease", 10},
				{"CKD", 10},
				{"Chronic Pulmonary Disease", 10},
				{"Hepatitis", 10},
			}},
			{Name: TableEcho, Entries: []Entry{
				{"Normal", 0},
				{"Adequate LV systolic function", 0},
				{"Mild LV systolic dysfunction", 0},
				{"Adequate RV function", 0},
				{"Mild concentric LVH", 0},
				{"Right ventricular dysfunction", 0},
				{"Poor Echo Window", 0},
				{"Moderate LV Systolic function", 8.57},
				{"Moderate LV Dysfunction", 8.57},
				{"Bilateral pleural effusion", 8.57},
				{"Bilateral Moderate pleural effusion", 8.57},
				{"Modified left-sided pleural effusion, Mild LV Systolic function", 8.57},
				{"Severe LV Dysfunction", 10},
				{"Severe LV systolic dysfunction", 10},
				{"Severe LV systolic dysfunction, Mild AR, Severe TR", 10},
				{"Massive pericardial effusion", 10},
				{"LV dysfunction, Pericardial effusion", 10},
				{"LV dysfunction and right ventricular dysfunction", 10},
				{"LV dysfunction", 10},
				{"Dilated left and right ventricular", 10},
				{"Pulmonary hypertension", 10},
				{"Multiorgan dysfunction", 10},
				{"Reduced RV function", 10},
				{"Severe TR", 10},
				{"Liver tachycardia", 10},
				{"Degenerative aortic valve disease", 10},
				{"Concentric LVH", 10},
			}},
		},
		ReferenceRanges: map[string]Range{
			"Hemoglobin":                       {13, 17},
			"Total leukocyte count":            {4000, 11000},
			"GRBS/ random blood sugar (mg/dL)": {70, 140},
			"Total protein (g/dl)":             {6.6, 8.7},
			"Serum albumin (g/dl)":             {3.5, 5.2},
			"Total bilirubin":                  {0, 1.2},
			"Direct bilirubin":                 {0, 0.2},
			"AST":                              {0, 41},
			"ALT":                              {0, 40},
			"Prothrombin time (PT)":            {11, 16},
			"Activated partial thromboplastin time (APTT)": {26, 40},
			"Urea (mg/dL)":           {16.6, 48.5},
			"Creatinine":             {0.7, 1.2},
			"Platelet":               {50000, 150000},
			"Sodium (mM/l)":          {136, 145},
			"Potassium (mM/l)":       {3.5, 5.1},
			"pH":                     {7.35, 7.45},
			"PO2 (mmHg)":             {60, 100},
			"Bicarb (mmol/l)":        {20, 29},
			"Lactate (mol/L)":        {1.3, 2.0},
			"CPK (U/L)":              {0, 190},
			"CPK-MB (U/L)":           {0, 25},
			"CRP (mg/L)":             {0, 6},
			"Procalcitonin (ng/ml)":  {0, 0.5},
			"Serum ferritin (ng/ml)": {30, 400},
			"LDH (U/L)":              {0, 250},
			"d Dimer (mcg/ml)":       {0, 0.5},
		},
		ActionHints: map[string]string{
			"Hemoglobin":            "Suggests anemia or blood loss — consider CBC review and bleeding source.",
			"Total leukocyte count": "May indicate infection or inflammation — evaluate infection markers and cultures.",
			"Serum albumin (g/dl)":  "Low values may suggest malnutrition or hepatic dysfunction — consider nutritional support and LFT review.",
			"Urea (mg/dL)":          "High urea may suggest dehydration or renal failure — check creatinine, electrolytes, hydration status.",
			"Creatinine":            "Elevated levels suggest impaired renal function — monitor renal profile and adjust medications.",
			"CRP (mg/L)":            "Indicates systemic inflammation — evaluate for infection, sepsis, or autoimmune process.",
			"Procalcitonin (ng/ml)": "May signal bacterial sepsis — start empirical antibiotics and monitor trend.",
			"LDH (U/L)":             "Suggests tissue breakdown — assess for hemolysis, liver damage, or tumor lysis.",
			"d Dimer (mcg/ml)":      "May indicate thromboembolic event — consider Doppler/CT angiography for PE/DVT.",
			"Platelet":              "Low platelets increase bleeding risk — evaluate for DIC, sepsis, or marrow suppression.",
			"Sodium (mM/l)":         "Abnormal sodium may reflect SIADH, dehydration, or adrenal dysfunction — treat accordingly.",
			"Potassium (mM/l)":      "Imbalance can cause arrhythmias — correct cautiously and monitor ECG.",
			"pH":                    "Deranged pH may point to metabolic or respiratory acidosis/alkalosis — review ABG and lactate.",
			"Lactate (mol/L)":       "High lactate = poor perfusion or sepsis — consider fluid resuscitation and antibiotics.",
			"ALT":                   "Elevated ALT may suggest hepatocellular injury — evaluate hepatitis, ischemia, or drugs.",
			"AST":                   "Elevated AST may indicate liver, cardiac, or muscle injury — compare with ALT and CPK.",
			"Direct bilirubin":      "Elevation indicates possible cholestasis — evaluate for biliary obstruction or sepsis.",
			"Total bilirubin":       "Hyperbilirubinemia may reflect liver dysfunction or hemolysis — check LFT and hemolysis labs.",
		},
		CategoricalHints: map[string]string{
			"Airway & breathing":           "Severe derangements may require mechanical ventilation.",
			"Renal":                        "Dialysis may be needed in worsening AKI or CKD.",
			"Hematological":                "Consider blood product transfusion if bleeding risk high.",
			"Gastrointestinal and Hepatic": "Evaluate for liver failure or ileus.",
			"CO-MORBIDITY":                 "Multiple comorbidities may worsen prognosis—multi-disciplinary review advised.",
			"Complications":                "Critical complications like ARDS or CKD demand aggressive management.",
			"ECHO":                         "Severe dysfunction indicates need for cardiology consult.",
		},
	}
}
