package attribute

import "github.com/pavelanni/surveysheet/internal/model"

func sw(name, def, category, help string) Descriptor {
	return Descriptor{Name: name, Default: def, Type: Switch, Options: []string{"0", "1"}, Category: category, Help: help}
}

func integer(name, def string, min, max *int, category, help string) Descriptor {
	return Descriptor{Name: name, Default: def, Type: Integer, Min: min, Max: max, Category: category, Help: help}
}

func sel(name, def string, options []string, category, help string) Descriptor {
	return Descriptor{Name: name, Default: def, Type: SingleSelect, Options: options, Category: category, Help: help}
}

func text(name, def, category, help string) Descriptor {
	return Descriptor{Name: name, Default: def, Type: Text, Category: category, Help: help}
}

func free(name, def, category, help string) Descriptor {
	return Descriptor{Name: name, Default: def, Type: FreeText, Category: category, Help: help}
}

// universal applies to every question type.
var universal = []Descriptor{
	sw("hidden", "0", "Display", "Hide this question at any time"),
	text("cssclass", "", "Display", "CSS class(es) added to the question container"),
	sw("hide_tip", "0", "Display", "Hide the tip normally shown with the question"),
	sw("page_break", "0", "Other", "Insert a page break before this question in printable view"),
	text("random_group", "", "Logic", "Randomization group name"),
	free("em_validation_q", "", "Logic", "Boolean expression validating the whole question"),
	text("em_validation_q_tip", "", "Logic", "Tip shown when question validation fails"),
	sw("public_statistics", "0", "Statistics", "Show statistics of this question in the public statistics page"),
	sw("statistics_showgraph", "1", "Statistics", "Display a chart in statistics"),
	sel("statistics_graphtype", "0", []string{"0", "1", "2", "3", "4", "5"}, "Statistics",
		"Chart type: 0 bar, 1 pie, 2 radar, 3 line, 4 polar area, 5 doughnut"),
	sw("save_as_default", "0", "Other", "Save the current answers as default values"),
	integer("time_limit", "", intPtr(0), nil, "Timer", "Limit time to answer this question (seconds)"),
	sel("time_limit_action", "1", []string{"1", "2", "3"}, "Timer",
		"Action after time limit: 1 warn and move on, 2 move on without warning, 3 disable only"),
	sw("time_limit_disable_next", "0", "Timer", "Disable the next button until time expires"),
	sw("time_limit_disable_prev", "0", "Timer", "Disable the previous button until time expires"),
	text("time_limit_countdown_message", "", "Timer", "Text shown in the countdown timer"),
	free("time_limit_timer_style", "", "Timer", "CSS style for the countdown timer"),
	integer("time_limit_message_delay", "", intPtr(0), nil, "Timer", "Milliseconds the expiry message is displayed"),
	text("time_limit_message", "", "Timer", "Message shown when time expires"),
	free("time_limit_message_style", "", "Timer", "CSS style for the expiry message"),
	integer("time_limit_warning", "", intPtr(0), nil, "Timer", "Seconds left when the first warning is shown"),
	integer("time_limit_warning_display_time", "", intPtr(0), nil, "Timer", "Seconds the first warning is displayed"),
	text("time_limit_warning_message", "", "Timer", "First warning text"),
	free("time_limit_warning_style", "", "Timer", "CSS style for the first warning"),
	integer("time_limit_warning_2", "", intPtr(0), nil, "Timer", "Seconds left when the second warning is shown"),
	integer("time_limit_warning_2_display_time", "", intPtr(0), nil, "Timer", "Seconds the second warning is displayed"),
	text("time_limit_warning_2_message", "", "Timer", "Second warning text"),
	free("time_limit_warning_2_style", "", "Timer", "CSS style for the second warning"),
}

var (
	prefixSuffix = []Descriptor{
		text("prefix", "", "Display", "Text shown before the input field"),
		text("suffix", "", "Display", "Text shown after the input field"),
	}

	inputSize = []Descriptor{
		integer("maximum_chars", "", intPtr(0), nil, "Input", "Maximum number of characters"),
		sel("text_input_width", "", []string{"", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"}, "Display",
			"Relative width of the text input (grid columns)"),
		integer("input_size", "", intPtr(0), nil, "Display", "Size of the input or textarea element"),
	}

	arrayFilter = []Descriptor{
		text("array_filter", "", "Logic", "Question code whose checked answers filter this question's rows"),
		text("array_filter_exclude", "", "Logic", "Question code whose checked answers exclude this question's rows"),
		sel("array_filter_style", "0", []string{"0", "1"}, "Logic", "Filtered rows are 0 hidden or 1 disabled"),
	}

	otherOption = []Descriptor{
		text("other_replace_text", "", "Display", "Label replacing the default 'Other:' text"),
		sw("other_comment_mandatory", "0", "Logic", "Other comment is mandatory"),
		sw("other_numbers_only", "0", "Input", "Allow only numbers in the other field"),
		sel("other_position", "end", []string{"beginning", "end", "specific"}, "Display", "Position of the other option"),
		text("other_position_code", "", "Display", "Answer code after which the other option is placed"),
	}

	answerCount = []Descriptor{
		integer("min_answers", "", intPtr(0), nil, "Logic", "Minimum number of answers"),
		integer("max_answers", "", intPtr(0), nil, "Logic", "Maximum number of answers"),
	}

	randomOrder = sw("random_order", "0", "Display", "Present sub-questions in random order")
	answerOrder = sel("answer_order", "normal", []string{"normal", "random", "alphabetical"}, "Display", "Ordering of answer options")

	arrayDisplay = []Descriptor{
		integer("answer_width", "", intPtr(0), intPtr(100), "Display", "Width of the sub-question column in percent"),
		integer("repeat_headings", "", intPtr(0), nil, "Display", "Repeat column headings every N rows"),
		sw("use_dropdown", "0", "Display", "Present each row as a dropdown"),
	}

	sqValidation = []Descriptor{
		free("em_validation_sq", "", "Logic", "Expression validating each sub-question"),
		text("em_validation_sq_tip", "", "Logic", "Tip shown when sub-question validation fails"),
	}

	numeric = []Descriptor{
		free("min_num_value_n", "", "Input", "Minimum allowed value"),
		free("max_num_value_n", "", "Input", "Maximum allowed value"),
		sw("num_value_int_only", "0", "Input", "Allow only integer values"),
	}

	slider = []Descriptor{
		sw("slider_layout", "0", "Slider", "Use slider layout"),
		free("slider_min", "", "Slider", "Slider minimum value"),
		free("slider_max", "", "Slider", "Slider maximum value"),
		free("slider_accuracy", "", "Slider", "Slider step"),
		free("slider_default", "", "Slider", "Slider start position"),
		sel("slider_orientation", "0", []string{"0", "1"}, "Slider", "0 horizontal, 1 vertical"),
		text("slider_separator", "", "Slider", "Separator between slider label and value"),
	}
)

func concat(parts ...[]Descriptor) []Descriptor {
	var out []Descriptor
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func one(d ...Descriptor) []Descriptor { return d }

// byType lists the type-specific attributes. Entries here override the
// universal ones with the same name.
var byType = map[model.QuestionType][]Descriptor{
	model.TypeArrayDual: concat(arrayDisplay, arrayFilter, one(
		randomOrder,
		text("dualscale_headerA", "", "Display", "Header for the first scale"),
		text("dualscale_headerB", "", "Display", "Header for the second scale"),
		text("dropdown_prepostfix", "", "Display", "Prefix|suffix around the dropdowns"),
		text("dropdown_separators", "", "Display", "Separators between the dropdowns"),
	)),
	model.TypeFivePoint: one(
		sel("slider_rating", "0", []string{"0", "1", "2"}, "Display", "0 buttons, 1 stars, 2 slider"),
	),
	model.TypeArrayFivePoint:  concat(arrayDisplay, arrayFilter, sqValidation, one(randomOrder)),
	model.TypeArrayTenPoint:   concat(arrayDisplay, arrayFilter, sqValidation, one(randomOrder)),
	model.TypeArrayYesNo:      concat(arrayDisplay, arrayFilter, one(randomOrder)),
	model.TypeArrayIncSameDec: concat(arrayDisplay, arrayFilter, one(randomOrder)),
	model.TypeArray:           concat(arrayDisplay, arrayFilter, sqValidation, one(randomOrder)),
	model.TypeArrayColumn:     concat(arrayFilter, one(randomOrder)),
	model.TypeDate: one(
		text("date_format", "", "Input", "Date/time format for this question"),
		sw("dropdown_dates", "0", "Display", "Use dropdown boxes instead of a calendar"),
		free("date_min", "", "Input", "Minimum date (expression allowed)"),
		free("date_max", "", "Input", "Maximum date (expression allowed)"),
		integer("dropdown_dates_minute_step", "1", intPtr(1), intPtr(60), "Input", "Minute step in dropdowns"),
		sw("reverse", "0", "Display", "Reverse the year order in dropdowns"),
	),
	model.TypeGender: one(
		sel("display_type", "0", []string{"0", "1"}, "Display", "0 button group, 1 radio list"),
	),
	model.TypeLanguage: nil,
	model.TypeMultiNumerical: concat(prefixSuffix, inputSize, arrayFilter, sqValidation, slider, one(
		randomOrder,
		free("min_num_value", "", "Input", "Minimum sum of all entries"),
		free("max_num_value", "", "Input", "Maximum sum of all entries"),
		free("equals_num_value", "", "Input", "Required sum of all entries"),
		sw("num_value_int_only", "0", "Input", "Allow only integer values"),
		integer("label_input_columns", "", intPtr(0), intPtr(12), "Display", "Grid columns of the label"),
	)),
	model.TypeList: concat(otherOption, arrayFilter, one(
		answerOrder,
		integer("display_columns", "", intPtr(0), intPtr(12), "Display", "Number of columns for the answer options"),
		text("category_separator", "", "Display", "Category separator for the answer codes"),
	)),
	model.TypeMultipleChoice: concat(otherOption, arrayFilter, answerCount, one(
		randomOrder,
		integer("assessment_value", "1", nil, nil, "Other", "Assessment value for each checked option"),
		integer("display_columns", "", intPtr(0), intPtr(12), "Display", "Number of columns for the options"),
		text("exclude_all_others", "", "Logic", "Sub-question code excluding all other options"),
		sw("exclude_all_others_auto", "0", "Logic", "Automatically check exclusive option"),
	)),
	model.TypeNumerical: concat(prefixSuffix, inputSize, numeric),
	model.TypeListComment: concat(one(
		answerOrder,
		sel("commented_checkbox", "allways", []string{"allways", "checked", "unchecked"}, "Logic", "When the comment is shown"),
	), arrayFilter),
	model.TypeMultiComment: concat(otherOption, arrayFilter, answerCount, one(
		randomOrder,
		sel("commented_checkbox", "allways", []string{"allways", "checked", "unchecked"}, "Logic", "Comment only when"),
		sw("commented_checkbox_auto", "1", "Logic", "Remove comment if option is unchecked"),
	)),
	model.TypeMultiShortText: concat(prefixSuffix, inputSize, arrayFilter, sqValidation, answerCount, one(
		randomOrder,
		sw("numbers_only", "0", "Input", "Allow only numbers"),
		integer("label_input_columns", "", intPtr(0), intPtr(12), "Display", "Grid columns of the label"),
	)),
	model.TypeRanking: concat(arrayFilter, answerCount, one(
		answerOrder,
		integer("max_subquestions", "", intPtr(0), nil, "Logic", "Maximum number of options to rank"),
		text("choice_title", "", "Display", "Header of the choices list"),
		text("rank_title", "", "Display", "Header of the ranking list"),
		sw("showpopups", "1", "Display", "Show a warning when the maximum is reached"),
		sw("samechoiceheight", "1", "Display", "Same height for all choices"),
		sw("samelistheight", "1", "Display", "Same height for both lists"),
	)),
	model.TypeShortText: concat(prefixSuffix, inputSize, one(
		sw("numbers_only", "0", "Input", "Allow only numbers"),
		integer("display_rows", "", intPtr(0), nil, "Display", "Number of rows of the input"),
		sel("location_mapservice", "0", []string{"0", "1", "100"}, "Location", "0 off, 1 Google Maps, 100 OpenStreetMap"),
		sw("location_city", "0", "Location", "Store the city"),
		sw("location_state", "0", "Location", "Store the state"),
		sw("location_postal", "0", "Location", "Store the postal code"),
		sw("location_country", "0", "Location", "Store the country"),
		free("location_defaultcoordinates", "", "Location", "Default position as 'lat lng'"),
		integer("location_mapzoom", "11", intPtr(1), intPtr(18), "Location", "Map zoom level"),
		integer("location_mapheight", "300", intPtr(0), nil, "Location", "Map height in pixels"),
	)),
	model.TypeLongText: concat(prefixSuffix, inputSize, one(
		integer("display_rows", "", intPtr(0), nil, "Display", "Number of rows of the textarea"),
	)),
	model.TypeHugeText: concat(prefixSuffix, inputSize, one(
		integer("display_rows", "", intPtr(0), nil, "Display", "Number of rows of the textarea"),
	)),
	model.TypeBoilerplate: nil,
	model.TypeYesNo: one(
		sel("display_type", "0", []string{"0", "1"}, "Display", "0 button group, 1 radio list"),
	),
	model.TypeDropdown: concat(otherOption, arrayFilter, one(
		answerOrder,
		text("category_separator", "", "Display", "Category separator for the answer codes"),
		integer("dropdown_size", "", intPtr(0), nil, "Display", "Height of the dropdown list"),
		text("dropdown_prefix", "", "Display", "Prefix shown inside the dropdown"),
	)),
	model.TypeArrayNumbers: concat(arrayDisplay, arrayFilter, sqValidation, one(
		randomOrder,
		integer("multiflexible_min", "", nil, nil, "Input", "Minimum value of the number dropdowns"),
		integer("multiflexible_max", "", nil, nil, "Input", "Maximum value of the number dropdowns"),
		integer("multiflexible_step", "1", intPtr(1), nil, "Input", "Step of the number dropdowns"),
		sw("multiflexible_checkbox", "0", "Display", "Use checkboxes instead of dropdowns"),
		sw("input_boxes", "0", "Display", "Use text inputs instead of dropdowns"),
		sw("reverse", "0", "Display", "Reverse the dropdown order"),
	)),
	model.TypeArrayTexts: concat(arrayDisplay, arrayFilter, sqValidation, inputSize, one(
		randomOrder,
		sw("numbers_only", "0", "Input", "Allow only numbers"),
		sw("show_totals", "0", "Display", "Show row and column totals"),
	)),
	model.TypeFileUpload: one(
		integer("max_filesize", "10240", intPtr(1), nil, "File", "Maximum file size in KB"),
		integer("max_num_of_files", "1", intPtr(0), nil, "File", "Maximum number of files"),
		integer("min_num_of_files", "0", intPtr(0), nil, "File", "Minimum number of files"),
		text("allowed_filetypes", "png, gif, doc, odt, jpg, jpeg, pdf", "File", "Comma separated list of extensions"),
		sw("show_title", "1", "File", "Ask for a title of each file"),
		sw("show_comment", "1", "File", "Ask for a comment on each file"),
	),
	model.TypeEquation: one(
		free("equation", "", "Logic", "Expression computed and stored as the answer"),
		sw("numbers_only", "0", "Input", "Store the result as a number"),
	),
}
