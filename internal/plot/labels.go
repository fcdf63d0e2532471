package plot

import "strings"

// Labels holds every caption shown on charts and in the console summary
type Labels struct {
	Strategy      string `json:"strategy" yaml:"strategy"`
	Benchmark     string `json:"benchmark" yaml:"benchmark"`
	ReturnsTitle  string `json:"returns_title" yaml:"returns_title"`
	ReturnsAxis   string `json:"returns_axis" yaml:"returns_axis"`
	DrawdownTitle string `json:"drawdown_title" yaml:"drawdown_title"`
	DrawdownAxis  string `json:"drawdown_axis" yaml:"drawdown_axis"`
	MaxDrawdown   string `json:"max_drawdown" yaml:"max_drawdown"`
	Sharpe        string `json:"sharpe" yaml:"sharpe"`
}

// English returns the default captions
func English() Labels {
	return Labels{
		Strategy:      "Strategy",
		Benchmark:     "RTS",
		ReturnsTitle:  "Returns",
		ReturnsAxis:   "Returns %",
		DrawdownTitle: "Drawdown",
		DrawdownAxis:  "Drawdown %",
		MaxDrawdown:   "Max drawdown",
		Sharpe:        "Sharpe ratio",
	}
}

// Russian returns the Russian captions
func Russian() Labels {
	return Labels{
		Strategy:      "Стратегия",
		Benchmark:     "РТС",
		ReturnsTitle:  "Доходность",
		ReturnsAxis:   "Доходность %",
		DrawdownTitle: "Просадка",
		DrawdownAxis:  "Просадка %",
		MaxDrawdown:   "Максимальная просадка",
		Sharpe:        "Коэффициент Шарпа",
	}
}

// LabelsFor returns the preset for lang ("en", "ru"). Unknown languages
// fall back to English and report false.
func LabelsFor(lang string) (Labels, bool) {
	switch strings.ToLower(lang) {
	case "", "en":
		return English(), true
	case "ru":
		return Russian(), true
	default:
		return English(), false
	}
}

// captionIndex is the index the preset benchmark captions name
const captionIndex = "RTSI"

// ForIndex names the benchmark after index when the caption is still a
// preset one describing another index. Captions loaded from a labels
// file that differ from the presets are kept.
func (l Labels) ForIndex(index string) Labels {
	index = strings.ToUpper(strings.TrimSpace(index))
	if index == "" || index == captionIndex {
		return l
	}
	if l.Benchmark != English().Benchmark && l.Benchmark != Russian().Benchmark {
		return l
	}
	return l.WithBenchmark(index)
}

// WithBenchmark returns a copy with the benchmark caption replaced
func (l Labels) WithBenchmark(name string) Labels {
	if name != "" {
		l.Benchmark = name
	}
	return l
}
