package model

// Macros holds the four tracked nutrition values.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Add returns the element-wise sum of m and o.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
	}
}

// Scale multiplies every value by k.
func (m Macros) Scale(k float64) Macros {
	return Macros{
		Calories: m.Calories * k,
		Protein:  m.Protein * k,
		Carbs:    m.Carbs * k,
		Fat:      m.Fat * k,
	}
}
