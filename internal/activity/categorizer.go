package activity

import "strings"

// Rule maps a matching record to a category. Match receives the raw type
// and raw name already passed through FoldText.
type Rule struct {
	Name     string
	Category Category
	Match    func(rawType, rawName string) bool
}

// KeywordRule matches when any keyword occurs in the folded type or name.
func KeywordRule(name string, category Category, keywords ...string) Rule {
	folded := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			folded = append(folded, FoldText(k))
		}
	}
	return Rule{
		Name:     name,
		Category: category,
		Match: func(rawType, rawName string) bool {
			for _, k := range folded {
				if strings.Contains(rawType, k) || strings.Contains(rawName, k) {
					return true
				}
			}
			return false
		},
	}
}

// DefaultRules returns the built-in rules in evaluation order. Indoor rules
// come first so "Virtual Ride" never lands in plain cycling.
func DefaultRules() []Rule {
	return []Rule{
		KeywordRule("indoor-running", CategoryRunning,
			"virtualrun", "virtual run", "virtuele hardloop", "treadmill", "loopband", "indoor run"),
		KeywordRule("indoor-cycling", CategoryIndoorCycling,
			"virtual", "virtuele", "zwift", "rouvy", "trainerroad", "mywhoosh", "fulgaz",
			"indoor cycling", "indoor ride", "indoorfiets", "hometrainer", "home trainer", "spinning"),
		KeywordRule("cycling", CategoryCycling,
			"ride", "fiets", "bike", "cycl", "gravel", "mtb", "wielren"),
		KeywordRule("running", CategoryRunning,
			"run", "hardloop", "hardlopen", "jog", "trail"),
		KeywordRule("walking", CategoryWalking,
			"walk", "wandel", "hike", "hiking"),
		KeywordRule("swimming", CategorySwimming,
			"swim", "zwem"),
		KeywordRule("racquet", CategoryRacquet,
			"padel", "tennis", "squash", "badminton", "pickleball"),
		KeywordRule("strength", CategoryStrength,
			"weight", "gewicht", "training", "workout", "fitness", "crossfit", "kracht", "strength", "gym"),
	}
}

// Categorizer assigns categories using an ordered rule list.
type Categorizer struct {
	rules []Rule
}

// NewCategorizer builds a categorizer whose extra rules take precedence
// over the defaults, in the order given.
func NewCategorizer(extra ...Rule) *Categorizer {
	rules := make([]Rule, 0, len(extra)+8)
	rules = append(rules, extra...)
	rules = append(rules, DefaultRules()...)
	return &Categorizer{rules: rules}
}

// Rules returns the active rules in evaluation order.
func (c *Categorizer) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Categorize returns the first matching category, or CategoryOther.
func (c *Categorizer) Categorize(r Record) Category {
	return c.classify(r.RawType, r.RawName)
}

func (c *Categorizer) classify(rawType, rawName string) Category {
	t, n := FoldText(rawType), FoldText(rawName)
	for _, rule := range c.rules {
		if rule.Match != nil && rule.Match(t, n) {
			return rule.Category
		}
	}
	return CategoryOther
}

// Apply returns classified copies of records. The input is not modified.
func (c *Categorizer) Apply(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.WithCategory(c.Categorize(r))
	}
	return out
}
