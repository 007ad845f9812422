package scoring

// Profile is the fixed candidate profile the scorer measures listings against.
type Profile struct {
	TitleKeywords   []string `mapstructure:"title-keywords" json:"title_keywords"`
	DescriptionMust []string `mapstructure:"description-must" json:"description_must"`
	DescriptionNice []string `mapstructure:"description-nice" json:"description_nice"`
	ExcludeTitle    []string `mapstructure:"exclude-title" json:"exclude_title"`
	// MinScore is the acceptance floor applied before merging.
	MinScore int        `mapstructure:"min-score" json:"min_score"`
	Salary   Thresholds `mapstructure:"salary" json:"salary"`
	Points   Points     `mapstructure:"points" json:"points"`
}

// Thresholds are annual compensation levels in the listing currency.
type Thresholds struct {
	Preferred float64 `mapstructure:"preferred" json:"preferred"`
	Boost     float64 `mapstructure:"boost" json:"boost"`
}

// Points is the additive point budget. Zero values fall back to DefaultPoints.
type Points struct {
	TitleHit        int `mapstructure:"title-hit" json:"title_hit"`
	TitleCap        int `mapstructure:"title-cap" json:"title_cap"`
	MustHit         int `mapstructure:"must-hit" json:"must_hit"`
	MustCap         int `mapstructure:"must-cap" json:"must_cap"`
	NiceHit         int `mapstructure:"nice-hit" json:"nice_hit"`
	NiceCap         int `mapstructure:"nice-cap" json:"nice_cap"`
	SalaryBoost     int `mapstructure:"salary-boost" json:"salary_boost"`
	SalaryPreferred int `mapstructure:"salary-preferred" json:"salary_preferred"`
}

// DefaultPoints caps the keyword sub-scores at 40+25+20 and awards up to 15 for salary.
var DefaultPoints = Points{
	TitleHit:        12,
	TitleCap:        40,
	MustHit:         5,
	MustCap:         25,
	NiceHit:         3,
	NiceCap:         20,
	SalaryBoost:     15,
	SalaryPreferred: 8,
}

// DefaultProfile targets senior program, growth and strategy roles.
func DefaultProfile() Profile {
	return Profile{
		TitleKeywords: []string{
			"director", "head", "lead", "senior", "principal", "vp",
			"growth", "strategy", "program", "product", "business",
			"p&l", "marketplace", "category", "city",
		},
		DescriptionMust: []string{
			"strategy", "growth", "program", "product", "operations",
			"p&l", "business", "stakeholder", "cross-functional",
		},
		DescriptionNice: []string{
			"ai", "sql", "data", "analytics", "user acquisition",
			"marketplace", "food", "delivery", "consumer", "fintech",
			"tableau", "dashboard", "okr", "revenue",
		},
		ExcludeTitle: []string{
			"intern", "fresher", "junior", "associate", "entry level",
			"trainee", "graduate", "assistant",
		},
		MinScore: 30,
		Salary: Thresholds{
			Preferred: 2_500_000,
			Boost:     3_500_000,
		},
		Points: DefaultPoints,
	}
}

func (p Points) withDefaults() Points {
	fill := func(v *int, d int) {
		if *v <= 0 {
			*v = d
		}
	}
	fill(&p.TitleHit, DefaultPoints.TitleHit)
	fill(&p.TitleCap, DefaultPoints.TitleCap)
	fill(&p.MustHit, DefaultPoints.MustHit)
	fill(&p.MustCap, DefaultPoints.MustCap)
	fill(&p.NiceHit, DefaultPoints.NiceHit)
	fill(&p.NiceCap, DefaultPoints.NiceCap)
	fill(&p.SalaryBoost, DefaultPoints.SalaryBoost)
	fill(&p.SalaryPreferred, DefaultPoints.SalaryPreferred)
	return p
}
