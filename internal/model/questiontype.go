package model

// QuestionType is the single-character code selecting a question's
// behaviour and its attribute schema.
type QuestionType string

const (
	TypeArrayDual       QuestionType = "1"
	TypeFivePoint       QuestionType = "5"
	TypeArrayFivePoint  QuestionType = "A"
	TypeArrayTenPoint   QuestionType = "B"
	TypeArrayYesNo      QuestionType = "C"
	TypeDate            QuestionType = "D"
	TypeArrayIncSameDec QuestionType = "E"
	TypeArray           QuestionType = "F"
	TypeGender          QuestionType = "G"
	TypeArrayColumn     QuestionType = "H"
	TypeLanguage        QuestionType = "I"
	TypeMultiNumerical  QuestionType = "K"
	TypeList            QuestionType = "L"
	TypeMultipleChoice  QuestionType = "M"
	TypeNumerical       QuestionType = "N"
	TypeListComment     QuestionType = "O"
	TypeMultiComment    QuestionType = "P"
	TypeMultiShortText  QuestionType = "Q"
	TypeRanking         QuestionType = "R"
	TypeShortText       QuestionType = "S"
	TypeLongText        QuestionType = "T"
	TypeHugeText        QuestionType = "U"
	TypeBoilerplate     QuestionType = "X"
	TypeYesNo           QuestionType = "Y"
	TypeDropdown        QuestionType = "!"
	TypeArrayNumbers    QuestionType = ":"
	TypeArrayTexts      QuestionType = ";"
	TypeFileUpload      QuestionType = "|"
	TypeEquation        QuestionType = "*"
)

type typeInfo struct {
	name string
	// number of sub-question axes (scales) the type uses
	subquestionScales int
	// number of answer scales the type uses
	answerScales int
}

var questionTypes = map[QuestionType]typeInfo{
	TypeArrayDual:       {"Array dual scale", 1, 2},
	TypeFivePoint:       {"5 point choice", 0, 0},
	TypeArrayFivePoint:  {"Array (5 point choice)", 1, 0},
	TypeArrayTenPoint:   {"Array (10 point choice)", 1, 0},
	TypeArrayYesNo:      {"Array (Yes/No/Uncertain)", 1, 0},
	TypeDate:            {"Date/Time", 0, 0},
	TypeArrayIncSameDec: {"Array (Increase/Same/Decrease)", 1, 0},
	TypeArray:           {"Array", 1, 1},
	TypeGender:          {"Gender", 0, 0},
	TypeArrayColumn:     {"Array by column", 1, 1},
	TypeLanguage:        {"Language switch", 0, 0},
	TypeMultiNumerical:  {"Multiple numerical input", 1, 0},
	TypeList:            {"List (radio)", 0, 1},
	TypeMultipleChoice:  {"Multiple choice", 1, 0},
	TypeNumerical:       {"Numerical input", 0, 0},
	TypeListComment:     {"List with comment", 0, 1},
	TypeMultiComment:    {"Multiple choice with comments", 1, 0},
	TypeMultiShortText:  {"Multiple short text", 1, 0},
	TypeRanking:         {"Ranking", 0, 1},
	TypeShortText:       {"Short free text", 0, 0},
	TypeLongText:        {"Long free text", 0, 0},
	TypeHugeText:        {"Huge free text", 0, 0},
	TypeBoilerplate:     {"Text display", 0, 0},
	TypeYesNo:           {"Yes/No", 0, 0},
	TypeDropdown:        {"List (dropdown)", 0, 1},
	TypeArrayNumbers:    {"Array (Numbers)", 2, 0},
	TypeArrayTexts:      {"Array (Texts)", 2, 0},
	TypeFileUpload:      {"File upload", 0, 0},
	TypeEquation:        {"Equation", 0, 0},
}

// questionTypeOrder is the stable listing order used by the help sheet.
var questionTypeOrder = []QuestionType{
	TypeArrayDual, TypeFivePoint, TypeArrayFivePoint, TypeArrayTenPoint,
	TypeArrayYesNo, TypeDate, TypeArrayIncSameDec, TypeArray, TypeGender,
	TypeArrayColumn, TypeLanguage, TypeMultiNumerical, TypeList,
	TypeMultipleChoice, TypeNumerical, TypeListComment, TypeMultiComment,
	TypeMultiShortText, TypeRanking, TypeShortText, TypeLongText,
	TypeHugeText, TypeBoilerplate, TypeYesNo, TypeDropdown,
	TypeArrayNumbers, TypeArrayTexts, TypeFileUpload, TypeEquation,
}

// QuestionTypes returns every known question type in listing order.
func QuestionTypes() []QuestionType {
	out := make([]QuestionType, len(questionTypeOrder))
	copy(out, questionTypeOrder)
	return out
}

// Known reports whether t is a recognised question type code.
func (t QuestionType) Known() bool {
	_, ok := questionTypes[t]
	return ok
}

// Name returns the human readable type name.
func (t QuestionType) Name() string {
	if info, ok := questionTypes[t]; ok {
		return info.name
	}
	return string(t)
}

// UsesSubquestions reports whether the type owns sub-questions.
func (t QuestionType) UsesSubquestions() bool {
	return questionTypes[t].subquestionScales > 0
}

// UsesAnswers reports whether the type owns plain answer options.
func (t QuestionType) UsesAnswers() bool {
	return questionTypes[t].answerScales > 0
}

// SubquestionScales returns the number of sub-question axes of the type.
func (t QuestionType) SubquestionScales() int {
	return questionTypes[t].subquestionScales
}

// AnswerScales returns the number of answer scales of the type.
func (t QuestionType) AnswerScales() int {
	return questionTypes[t].answerScales
}

// IsMultiFlex reports whether the type is a matrix whose column axis is a
// second scale of sub-questions. Answer rows of such questions are
// stored as scale 1 sub-questions.
func (t QuestionType) IsMultiFlex() bool {
	return questionTypes[t].subquestionScales == 2
}
