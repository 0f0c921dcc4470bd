package attribute

// Scope says how an attribute value is stored.
type Scope int

const (
	ScopeGlobal Scope = iota
	ScopeLanguage
)

func (s Scope) String() string {
	if s == ScopeLanguage {
		return "per-language"
	}
	return "global"
}

var languageSpecificNames = []string{
	"prefix",
	"suffix",
	"other_replace_text",
	"em_validation_q_tip",
	"em_validation_sq_tip",
	"time_limit_countdown_message",
	"time_limit_message",
	"time_limit_warning_message",
	"time_limit_warning_2_message",
	"dualscale_headerA",
	"dualscale_headerB",
	"dropdown_prepostfix",
	"dropdown_separators",
	"dropdown_prefix",
	"choice_title",
	"rank_title",
	"date_format",
	"slider_separator",
	"category_separator",
}

var globalNames = []string{
	"hidden", "cssclass", "hide_tip", "page_break", "random_group",
	"em_validation_q", "em_validation_sq", "public_statistics",
	"statistics_showgraph", "statistics_graphtype", "save_as_default",
	"time_limit", "time_limit_action", "time_limit_disable_next",
	"time_limit_disable_prev", "time_limit_timer_style",
	"time_limit_message_delay", "time_limit_message_style",
	"time_limit_warning", "time_limit_warning_display_time",
	"time_limit_warning_style", "time_limit_warning_2",
	"time_limit_warning_2_display_time", "time_limit_warning_2_style",
	"maximum_chars", "text_input_width", "input_size", "display_rows",
	"array_filter", "array_filter_exclude", "array_filter_style",
	"other_comment_mandatory", "other_numbers_only", "other_position",
	"other_position_code", "min_answers", "max_answers", "random_order",
	"answer_order", "answer_width", "repeat_headings", "use_dropdown",
	"min_num_value_n", "max_num_value_n", "num_value_int_only",
	"min_num_value", "max_num_value", "equals_num_value",
	"label_input_columns", "slider_layout", "slider_min", "slider_max",
	"slider_accuracy", "slider_default", "slider_orientation",
	"slider_rating", "dropdown_dates", "date_min", "date_max",
	"dropdown_dates_minute_step", "reverse", "display_type",
	"display_columns", "assessment_value", "exclude_all_others",
	"exclude_all_others_auto", "commented_checkbox",
	"commented_checkbox_auto", "numbers_only", "max_subquestions",
	"showpopups", "samechoiceheight", "samelistheight",
	"location_mapservice", "location_city", "location_state",
	"location_postal", "location_country", "location_defaultcoordinates",
	"location_mapzoom", "location_mapheight", "dropdown_size",
	"multiflexible_min", "multiflexible_max", "multiflexible_step",
	"multiflexible_checkbox", "input_boxes", "show_totals",
	"max_filesize", "max_num_of_files", "min_num_of_files",
	"allowed_filetypes", "show_title", "show_comment", "equation",
}

// Classifier partitions attribute names into global and
// language-specific ones. Names on neither list are global.
type Classifier struct {
	scopes map[string]Scope
}

// NewClassifier builds the classifier from the static name lists.
func NewClassifier() *Classifier {
	c := &Classifier{scopes: make(map[string]Scope, len(globalNames)+len(languageSpecificNames))}
	for _, n := range globalNames {
		c.scopes[n] = ScopeGlobal
	}
	for _, n := range languageSpecificNames {
		c.scopes[n] = ScopeLanguage
	}
	return c
}

// Classify returns the scope of name and whether the name is listed.
func (c *Classifier) Classify(name string) (Scope, bool) {
	s, ok := c.scopes[name]
	return s, ok
}

// IsGlobal reports whether name carries one value for all languages.
func (c *Classifier) IsGlobal(name string) bool {
	s, _ := c.Classify(name)
	return s == ScopeGlobal
}

// IsLanguageSpecific reports whether name carries one value per language.
func (c *Classifier) IsLanguageSpecific(name string) bool {
	s, _ := c.Classify(name)
	return s == ScopeLanguage
}

// Separate splits attrs into global and language-specific maps.
func (c *Classifier) Separate(attrs map[string]string) (global, languageSpecific map[string]string) {
	global = make(map[string]string)
	languageSpecific = make(map[string]string)
	for name, value := range attrs {
		if c.IsLanguageSpecific(name) {
			languageSpecific[name] = value
		} else {
			global[name] = value
		}
	}
	return global, languageSpecific
}
