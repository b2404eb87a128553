package catalog

// Default returns the built-in reference catalogs used when no catalog file
// is configured.
func Default() Catalogs {
	return Catalogs{
		Populations: NewTaxonomy(defaultPopulations),
		Medications: NewTaxonomy(defaultMedications),
		Devices:     NewTaxonomy(defaultDevices),
		Procedures:  NewTaxonomy(defaultProcedures),
	}
}

var defaultPopulations = []Item{
	{ID: "cardiac_surgery", Label: "Cardiac Surgery (CVICU)"},
	{ID: "medical_icu", Label: "Medical ICU"},
	{ID: "surgical_icu", Label: "Surgical ICU"},
	{ID: "neuro", Label: "Neuro / Neurosurgical"},
	{ID: "trauma", Label: "Trauma"},
	{ID: "burn", Label: "Burn"},
	{ID: "transplant", Label: "Transplant"},
	{ID: "pediatric", Label: "Pediatric"},
	{ID: "neonatal", Label: "Neonatal"},
	{ID: "obstetric", Label: "Obstetric"},
	{ID: "geriatric", Label: "Geriatric"},
	{ID: "sepsis", Label: "Septic Shock"},
}

var defaultMedications = []Item{
	{ID: "norepinephrine", Label: "Norepinephrine (Levophed)", Tags: []string{TagVasopressor}, AcuityWeight: 1.5},
	{ID: "epinephrine", Label: "Epinephrine", Tags: []string{TagVasopressor}, AcuityWeight: 1.5},
	{ID: "vasopressin", Label: "Vasopressin", Tags: []string{TagVasopressor}, AcuityWeight: 1.5},
	{ID: "phenylephrine", Label: "Phenylephrine (Neo)", Tags: []string{TagVasopressor}, AcuityWeight: 1.5},
	{ID: "dopamine", Label: "Dopamine", Tags: []string{TagVasopressor}, AcuityWeight: 1.5},
	{ID: "angiotensin_ii", Label: "Angiotensin II (Giapreza)", Tags: []string{TagVasopressor}, AcuityWeight: 2},
	{ID: "dobutamine", Label: "Dobutamine", AcuityWeight: 1.5},
	{ID: "milrinone", Label: "Milrinone", AcuityWeight: 1.5},
	{ID: "propofol", Label: "Propofol"},
	{ID: "dexmedetomidine", Label: "Dexmedetomidine (Precedex)"},
	{ID: "fentanyl", Label: "Fentanyl"},
	{ID: "midazolam", Label: "Midazolam"},
	{ID: "ketamine", Label: "Ketamine"},
	{ID: "rocuronium", Label: "Rocuronium"},
	{ID: "vecuronium", Label: "Vecuronium"},
	{ID: "cisatracurium", Label: "Cisatracurium (Nimbex)"},
	{ID: "nitroglycerin", Label: "Nitroglycerin"},
	{ID: "nicardipine", Label: "Nicardipine (Cardene)"},
	{ID: "esmolol", Label: "Esmolol"},
	{ID: "amiodarone", Label: "Amiodarone"},
	{ID: "heparin", Label: "Heparin Infusion"},
	{ID: "insulin", Label: "Insulin Infusion"},
}

var defaultDevices = []Item{
	{ID: "arterial_line", Label: "Arterial Line", AcuityWeight: 1.5},
	{ID: "central_line", Label: "Central Venous Catheter", AcuityWeight: 1.5},
	{ID: "ventilator", Label: "Mechanical Ventilator", Tags: []string{TagHighAcuity}, AcuityWeight: 2},
	{ID: "pa_catheter", Label: "Pulmonary Artery Catheter (Swan-Ganz)", Tags: []string{TagHighAcuity}, AcuityWeight: 2.5},
	{ID: "iabp", Label: "Intra-Aortic Balloon Pump", Tags: []string{TagHighAcuity}, AcuityWeight: 3},
	{ID: "impella", Label: "Impella", Tags: []string{TagHighAcuity}, AcuityWeight: 3},
	{ID: "ecmo", Label: "ECMO", Tags: []string{TagHighAcuity}, AcuityWeight: 3},
	{ID: "lvad", Label: "LVAD", Tags: []string{TagHighAcuity}, AcuityWeight: 3},
	{ID: "crrt", Label: "CRRT", Tags: []string{TagHighAcuity}, AcuityWeight: 2.5},
	{ID: "evd", Label: "External Ventricular Drain", Tags: []string{TagHighAcuity}, AcuityWeight: 2.5},
	{ID: "icp_monitor", Label: "ICP Monitor", Tags: []string{TagHighAcuity}, AcuityWeight: 2},
	{ID: "temporary_pacer", Label: "Temporary Pacemaker", Tags: []string{TagHighAcuity}, AcuityWeight: 2},
	{ID: "chest_tube", Label: "Chest Tube"},
	{ID: "cooling_device", Label: "Targeted Temperature Management"},
	{ID: "bipap", Label: "BiPAP / CPAP"},
}

var defaultProcedures = []Item{
	{ID: "intubation", Label: "Intubation Assist"},
	{ID: "extubation", Label: "Extubation"},
	{ID: "art_line_insertion", Label: "Arterial Line Insertion"},
	{ID: "central_line_insertion", Label: "Central Line Insertion"},
	{ID: "bronchoscopy", Label: "Bronchoscopy"},
	{ID: "code_blue", Label: "Code Blue / ACLS"},
	{ID: "cardioversion", Label: "Cardioversion"},
	{ID: "proning", Label: "Prone Positioning"},
	{ID: "sbt", Label: "Spontaneous Breathing Trial"},
	{ID: "critical_transport", Label: "Critical Care Transport"},
	{ID: "massive_transfusion", Label: "Massive Transfusion Protocol"},
}
