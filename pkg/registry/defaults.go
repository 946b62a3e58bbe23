// pkg/registry/defaults.go
package registry

// Default returns a fresh copy of the built-in knowledge base.
func Default() *KnowledgeBase {
	return &KnowledgeBase{
		Version:              "1.0.0",
		LastUpdated:          "2026-10-01",
		DefaultSymptomWeight: 0.5,
		SymptomWeights: map[string]float64{
			"chest_pain":                   0.9,
			"seizures":                     0.95,
			"blurred_and_distorted_vision": 0.85,
			"blood_in_urine":               0.9,
			"abnormal_menstruation":        0.8,
			"burning_micturition":          0.85,

			"headache":       0.6,
			"joint_pain":     0.65,
			"back_pain":      0.6,
			"abdominal_pain": 0.7,
			"skin_rash":      0.75,

			"fatigue":   0.4,
			"fever":     0.45,
			"nausea":    0.5,
			"dizziness": 0.55,
			"anxiety":   0.5,
		},
		SymptomUrgency: map[string]string{
			"chest_pain":            UrgencyUrgent,
			"severe_headache":       UrgencyUrgent,
			"difficulty_breathing":  UrgencyUrgent,
			"seizures":              UrgencyUrgent,
			"severe_bleeding":       UrgencyUrgent,
			"loss_of_consciousness": UrgencyUrgent,
			"severe_abdominal_pain": UrgencyUrgent,
			"high_fever":            UrgencySemiUrgent,
			"persistent_vomiting":   UrgencySemiUrgent,
			"severe_dizziness":      UrgencySemiUrgent,
			"blood_in_urine":        UrgencySemiUrgent,
			"blood_in_stool":        UrgencySemiUrgent,
		},
		Specialists:       defaultSpecialists(),
		SpecialistAliases: defaultAliases(),
		RuleDiseases: map[string]RuleDisease{
			"skin_rash,itching":              {Disease: "Eczema", Confidence: 0.75},
			"cough,fever":                    {Disease: "Common Cold", Confidence: 0.7},
			"headache,fever":                 {Disease: "Viral Infection", Confidence: 0.7},
			"stomach_pain,nausea":            {Disease: "Gastroenteritis", Confidence: 0.8},
			"chest_pain,shortness_of_breath": {Disease: "Heart Disease", Confidence: 0.8},
		},
		Guidance: defaultGuidance(),
	}
}

func defaultSpecialists() map[string]SpecialistProfile {
	profiles := []SpecialistProfile{
		{
			Name:          "General Practitioner",
			Priority:      1,
			Description:   "First point of contact for most health concerns",
			WhenToConsult: "Initial assessment, routine care, referrals",
			Expertise:     []string{"General health", "Preventive care", "Common conditions"},
			ReferralPower: 10,
		},
		{
			Name:          "Family Medicine",
			Priority:      1,
			Description:   "Comprehensive care for all ages",
			WhenToConsult: "Family health, ongoing care, health maintenance",
			Expertise:     []string{"All-age care", "Chronic disease management", "Preventive medicine"},
			ReferralPower: 10,
		},
		{
			Name:          "Internal Medicine",
			Priority:      2,
			Description:   "Adult medicine and complex conditions",
			WhenToConsult: "Adult health issues, multiple conditions",
			Expertise:     []string{"Adult medicine", "Complex diagnoses", "Chronic diseases"},
			ReferralPower: 9,
		},
		{
			Name:              "Cardiology",
			Priority:          3,
			Description:       "Heart and cardiovascular system",
			WhenToConsult:     "Heart problems, chest pain, blood pressure issues",
			Expertise:         []string{"Heart disease", "Arrhythmias", "Hypertension", "Heart failure"},
			ReferralPower:     8,
			UrgencyIndicators: []string{"chest_pain", "palpitations", "shortness_of_breath"},
		},
		{
			Name:          "Dermatology",
			Priority:      3,
			Description:   "Skin, hair, and nail conditions",
			WhenToConsult: "Skin problems, rashes, moles, hair loss",
			Expertise:     []string{"Skin cancer", "Acne", "Eczema", "Psoriasis", "Cosmetic procedures"},
			ReferralPower: 7,
		},
		{
			Name:              "Neurology",
			Priority:          3,
			Description:       "Brain and nervous system disorders",
			WhenToConsult:     "Headaches, seizures, memory problems, neurological symptoms",
			Expertise:         []string{"Stroke", "Epilepsy", "Migraines", "Dementia", "Multiple sclerosis"},
			ReferralPower:     8,
			UrgencyIndicators: []string{"seizures", "severe_headache", "paralysis"},
		},
		{
			Name:          "Gastroenterology",
			Priority:      3,
			Description:   "Digestive system and liver",
			WhenToConsult: "Stomach problems, digestive issues, liver concerns",
			Expertise:     []string{"IBD", "Liver disease", "Endoscopy", "Acid reflux", "Colon cancer screening"},
			ReferralPower: 7,
		},
		{
			Name:              "Pulmonology",
			Priority:          3,
			Description:       "Lungs and respiratory system",
			WhenToConsult:     "Breathing problems, lung conditions, persistent cough",
			Expertise:         []string{"Asthma", "COPD", "Lung cancer", "Sleep apnea", "Pneumonia"},
			ReferralPower:     7,
			UrgencyIndicators: []string{"severe_breathlessness", "chest_pain"},
		},
		{
			Name:          "Endocrinology",
			Priority:      3,
			Description:   "Hormones and metabolism",
			WhenToConsult: "Diabetes, thyroid problems, hormone imbalances",
			Expertise:     []string{"Diabetes", "Thyroid disorders", "Adrenal disorders", "Osteoporosis"},
			ReferralPower: 7,
		},
		{
			Name:          "Rheumatology",
			Priority:      3,
			Description:   "Joints, muscles, and autoimmune conditions",
			WhenToConsult: "Joint pain, arthritis, autoimmune diseases",
			Expertise:     []string{"Rheumatoid arthritis", "Lupus", "Fibromyalgia", "Gout"},
			ReferralPower: 6,
		},
		{
			Name:          "Orthopedics",
			Priority:      3,
			Description:   "Bones, joints, and musculoskeletal system",
			WhenToConsult: "Bone fractures, joint problems, sports injuries",
			Expertise:     []string{"Fractures", "Joint replacement", "Sports medicine", "Spine surgery"},
			ReferralPower: 6,
		},
		{
			Name:              "Psychiatry",
			Priority:          3,
			Description:       "Mental health and psychiatric conditions",
			WhenToConsult:     "Depression, anxiety, mental health concerns",
			Expertise:         []string{"Depression", "Anxiety", "Bipolar disorder", "Schizophrenia", "ADHD"},
			ReferralPower:     8,
			UrgencyIndicators: []string{"severe_depression", "suicidal_thoughts", "psychosis"},
		},
		{
			Name:          "Ophthalmology",
			Priority:      3,
			Description:   "Eyes and vision",
			WhenToConsult: "Vision problems, eye pain, eye diseases",
			Expertise:     []string{"Cataracts", "Glaucoma", "Retinal disorders", "Eye surgery"},
			ReferralPower: 6,
		},
		{
			Name:          "ENT",
			Priority:      3,
			Description:   "Ear, nose, and throat",
			WhenToConsult: "Hearing problems, sinus issues, throat problems",
			Expertise:     []string{"Hearing loss", "Sinus surgery", "Throat cancer", "Sleep apnea"},
			ReferralPower: 6,
		},
		{
			Name:          "Urology",
			Priority:      3,
			Description:   "Urinary system and male reproductive health",
			WhenToConsult: "Urinary problems, kidney issues, male health",
			Expertise:     []string{"Kidney stones", "Prostate problems", "Bladder cancer", "Erectile dysfunction"},
			ReferralPower: 6,
		},
		{
			Name:          "Obstetrics & Gynecology",
			Priority:      3,
			Description:   "Women's reproductive health",
			WhenToConsult: "Pregnancy, menstrual problems, reproductive health",
			Expertise:     []string{"Pregnancy care", "Gynecologic surgery", "Fertility", "Menopause"},
			ReferralPower: 7,
		},
		{
			Name:              "Oncology",
			Priority:          4,
			Description:       "Cancer diagnosis and treatment",
			WhenToConsult:     "Cancer diagnosis, cancer treatment, tumor evaluation",
			Expertise:         []string{"Chemotherapy", "Cancer staging", "Tumor management", "Palliative care"},
			ReferralPower:     9,
			UrgencyIndicators: []string{"unexplained_weight_loss", "persistent_pain", "lumps"},
		},
		{
			Name:              "Emergency Medicine",
			Priority:          5,
			Description:       "Urgent and life-threatening conditions",
			WhenToConsult:     "Medical emergencies, severe symptoms, life-threatening situations",
			Expertise:         []string{"Trauma", "Acute conditions", "Life support", "Emergency procedures"},
			ReferralPower:     10,
			UrgencyIndicators: []string{"severe_chest_pain", "difficulty_breathing", "severe_bleeding"},
		},
	}

	out := make(map[string]SpecialistProfile, len(profiles))
	for _, p := range profiles {
		out[p.Name] = p
	}
	return out
}

func defaultAliases() map[string]string {
	return map[string]string{
		"Dermatologist":      "Dermatology",
		"Dermatologists":     "Dermatology",
		"Cardiologist":       "Internal Medicine, Cardiovascular Disease",
		"Gastroenterologist": "Internal Medicine, Gastroenterology",
		"Endocrinologist":    "Internal Medicine, Endocrinology, Diabetes & Metabolism",
		"Pulmonologist":      "Internal Medicine, Pulmonary Disease",
		"Neurologist":        "Psychiatry & Neurology, Neurology",
		"Allergist":          "Allergy & Immunology",
		"Otolaryngologist":   "Otolaryngology",
		"Gynecologist":       "Obstetrics & Gynecology",
		"Pediatrician":       "Pediatrics",
		"Rheumatologists":    "Internal Medicine, Rheumatology",
		"Ophthalmologist":    "Ophthalmology",

		"Dentistry":                               "Dentist",
		"Emergency Dentistry":                     "Dentist",
		"Dentist, General Practice":               "Dentist",
		"Dentist, Oral and Maxillofacial Surgery": "Dentist",
		"Dentist, Pediatric Dentistry":            "Dentist",

		"Internal Medcine": "Internal Medicine",
		"Hepatologist":     "Internal Medicine, Gastroenterology",
		"Phlebologist":     "Internal Medicine, Cardiovascular Disease",
		"Osteopathic":      "Family Medicine",
		"Osteoarthristis":  "Internal Medicine, Rheumatology",
		"Common Cold":      "Family Medicine",
	}
}

func defaultGuidance() Guidance {
	return Guidance{
		BaseQuestions: []string{
			"What tests or examinations will be needed?",
			"What are the possible treatment options?",
			"How long might treatment take?",
			"Are there any lifestyle changes I should make?",
		},
		SpecialistQuestions: map[string][]string{
			"Cardiology":       {"Should I avoid certain activities?", "Do I need cardiac monitoring?"},
			"Dermatology":      {"Is this condition contagious?", "Will this affect my appearance long-term?"},
			"Neurology":        {"Could this affect my cognitive function?", "Are there any warning signs to watch for?"},
			"Gastroenterology": {"Are there dietary restrictions?", "Could this be related to other digestive issues?"},
			"Endocrinology":    {"How will this affect my metabolism?", "Do I need regular monitoring?"},
		},
		GeneralPreparation: []string{
			"Bring a list of all current medications",
			"Prepare a timeline of when symptoms started",
			"Bring any relevant medical records or test results",
			"Write down questions you want to ask",
		},
		SpecialistPreparation: map[string][]string{
			"Cardiology":       {"Note any family history of heart disease", "Record blood pressure readings if available"},
			"Dermatology":      {"Take photos of skin changes", "List any new products or exposures"},
			"Neurology":        {"Keep a headache/symptom diary", "Note any triggers or patterns"},
			"Gastroenterology": {"Keep a food diary", "Note bowel movement patterns"},
		},
	}
}
