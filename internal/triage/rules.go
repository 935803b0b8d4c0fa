package triage

// Evaluator maps an input bundle to a verdict using fixed thresholds.
// Evaluators are pure and safe for concurrent use.
type Evaluator func(Inputs) Verdict

// RuleEvaluators returns the rule set keyed by disease.
func RuleEvaluators() map[Disease]Evaluator {
	return map[Disease]Evaluator{
		Thyroid:   EvaluateThyroid,
		Malaria:   EvaluateMalaria,
		Pneumonia: EvaluatePneumonia,
		Heart:     EvaluateHeart,
		Kidney:    EvaluateKidney,
		Liver:     EvaluateLiver,
	}
}

// EvaluateThyroid is Normal only when TSH, T3 and T4 all sit in their
// reference ranges.
func EvaluateThyroid(in Inputs) Verdict {
	r := strictReader{in: in}
	age := r.float(0, "Age")
	sex := r.int(-1, "Sex")
	tsh := r.float(0, "TSH")
	t3 := r.float(0, "T3")
	t4 := r.float(0, "T4")
	thyroxine := r.int(0, "Thyroxine")
	if r.err != nil {
		return Risky
	}

	if age <= 0 || age > 120 {
		return Risky
	}
	if !isFlag(sex) || !isFlag(thyroxine) {
		return Risky
	}

	if within(tsh, 0.5, 4.5) && within(t3, 0.8, 2.0) && within(t4, 4.5, 12.0) {
		return Normal
	}
	return Risky
}

// EvaluateMalaria flags a fever above 99°F accompanied by any symptom.
func EvaluateMalaria(in Inputs) Verdict {
	r := strictReader{in: in}
	temp := r.float(0, "Temperature")
	headache := r.int(0, "Headache")
	vomiting := r.int(0, "Vomiting")
	jointPain := r.int(0, "Joint_Pain")
	rbc := r.float(0, "rbc_count")
	if r.err != nil {
		return Risky
	}

	if temp <= 0 || temp > 115 {
		return Risky
	}
	if !isFlag(headache) || !isFlag(vomiting) || !isFlag(jointPain) {
		return Risky
	}
	if rbc <= 0 || rbc > 1e6 {
		return Risky
	}

	symptomatic := headache == 1 || vomiting == 1 || jointPain == 1
	if temp > 99 && symptomatic {
		return Risky
	}
	return Normal
}

// EvaluatePneumonia counts risk factors; any single factor is Risky.
//
// Unlike its siblings it has no malformed-input guard: unparsable values fall
// back to zero. Note that a zero oxygen saturation is itself a risk factor.
func EvaluatePneumonia(in Inputs) Verdict {
	r := lenientReader{in: in}
	age := r.float(0, "Age")
	cough := r.int(0, "Cough", "Cough_Severity")
	fever := r.float(0, "Fever")
	wbc := r.float(0, "WBC", "WBC_Count")
	oxygen := r.float(0, "Oxygen_Saturation")

	factors := 0
	if age > 60 {
		factors++
	}
	if cough >= 2 {
		factors++
	}
	if fever > 38 {
		factors++
	}
	if wbc > 11000 {
		factors++
	}
	if oxygen < 92 {
		factors++
	}

	if factors > 0 {
		return Risky
	}
	return Normal
}

// HeartScore accumulates the weighted cardiac risk score. ok is false when
// a field fails to parse.
func HeartScore(in Inputs) (score float64, ok bool) {
	r := strictReader{in: in}
	age := r.float(0, "age")
	_ = r.int(-1, "sex")
	cp := r.int(-1, "cp")
	trestbps := r.float(0, "trestbps")
	chol := r.float(0, "chol")
	thalach := r.float(0, "thalach")
	exang := r.int(-1, "exang")
	if r.err != nil {
		return 0, false
	}

	if age > 55 {
		score++
	}

	switch {
	case chol > 240:
		score++
	case chol > 200:
		score += 0.5
	}

	switch {
	case trestbps > 140:
		score++
	case trestbps > 130:
		score += 0.5
	}

	if thalach < 100 {
		score++
	}
	if exang == 1 {
		score += 2
	}
	// typical and atypical angina
	if cp == 0 || cp == 1 {
		score++
	}
	return score, true
}

// EvaluateHeart is Risky once the score reaches 3.
func EvaluateHeart(in Inputs) Verdict {
	score, ok := HeartScore(in)
	if !ok || score >= 3 {
		return Risky
	}
	return Normal
}

// EvaluateKidney range-checks the renal panel. It is also the safety clamp
// applied on top of the kidney model.
func EvaluateKidney(in Inputs) Verdict {
	r := strictReader{in: in}
	sg := r.float(0, "sg")
	al := r.float(0, "al")
	rbc := r.float(0, "rbc")
	pc := r.float(0, "pc")
	hemo := r.float(0, "hemo")
	wc := r.float(0, "wc")
	rc := r.float(0, "rc")
	bp := r.float(0, "bp")
	if r.err != nil {
		return Risky
	}

	switch {
	case !within(sg, 1.005, 1.030):
		return Risky
	case al > 2:
		return Risky
	case !within(rbc, 3.5, 5.5):
		return Risky
	case !within(pc, 150, 450):
		return Risky
	case !within(hemo, 13.5, 17.5):
		return Risky
	case !within(wc, 4000, 11000):
		return Risky
	case !within(rc, 4.2, 5.4):
		return Risky
	case !within(bp, 90, 140):
		return Risky
	}
	return Normal
}

// EvaluateLiver range-checks the liver function panel.
func EvaluateLiver(in Inputs) Verdict {
	r := strictReader{in: in}
	age := r.float(0, "Age")
	tb := r.float(0, "Total_Bilirubin")
	db := r.float(0, "Direct_Bilirubin")
	alkphos := r.float(0, "Alkaline_Phosphotase")
	sgpt := r.float(0, "Alamine_Aminotransferase")
	sgot := r.float(0, "Aspartate_Aminotransferase")
	if r.err != nil {
		return Risky
	}

	if age <= 0 || age > 120 {
		return Risky
	}

	switch {
	case !within(tb, 0.3, 1.2):
		return Risky
	case !within(db, 0.1, 0.5):
		return Risky
	case !within(alkphos, 30, 120):
		return Risky
	case !within(sgpt, 7, 56):
		return Risky
	case !within(sgot, 10, 40):
		return Risky
	}
	return Normal
}
