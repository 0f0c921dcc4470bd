package mapper

import (
	"fmt"

	"github.com/pavelanni/surveysheet/internal/model"
)

// Store is the persistence the mappers need. Find operations are served
// from an Index loaded once per run; Store is only read by BuildIndex.
type Store interface {
	ListGroups(surveyID int64) ([]model.Group, error)
	ListQuestions(surveyID int64) ([]model.Question, error)
	ListAnswers(surveyID int64) ([]model.Answer, error)
	ListAttributes(surveyID int64) ([]model.Attribute, error)
	ListQuotas(surveyID int64) ([]model.Quota, error)
	ListQuotaMembers(surveyID int64) ([]model.QuotaMember, error)

	SaveGroup(g *model.Group) error
	SaveGroupL10n(groupID int64, lang string, l model.GroupL10n) error
	SaveQuestion(q *model.Question) error
	SaveQuestionL10n(questionID int64, lang string, l model.QuestionL10n) error
	SaveAnswer(a *model.Answer) error
	SaveAnswerL10n(answerID int64, lang string, l model.AnswerL10n) error
	SetAttribute(a model.Attribute) error
	DeleteAttribute(questionID int64, name, language string) (int64, error)
	SaveQuota(q *model.Quota) error
	SaveQuotaL10n(quotaID int64, lang string, l model.QuotaL10n) error
	SaveQuotaMember(m *model.QuotaMember) (bool, error)
}

type childKey struct {
	parent int64
	scale  int
	code   string
}

type memberKey struct {
	quota    int64
	question int64
	code     string
}

// Index holds the current structure of a survey keyed by business key.
// Mappers keep it in sync with every save.
type Index struct {
	groups       map[string]*model.Group
	questions    map[string]*model.Question
	subquestions map[childKey]*model.Question
	answers      map[childKey]*model.Answer
	// question ID -> name -> language ("" for global) -> attribute
	attributes map[int64]map[string]map[string]*model.Attribute
	quotas     map[string]*model.Quota
	members    map[memberKey]bool
}

// BuildIndex loads the structure of surveyID.
func BuildIndex(st Store, surveyID int64) (*Index, error) {
	idx := &Index{
		groups:       make(map[string]*model.Group),
		questions:    make(map[string]*model.Question),
		subquestions: make(map[childKey]*model.Question),
		answers:      make(map[childKey]*model.Answer),
		attributes:   make(map[int64]map[string]map[string]*model.Attribute),
		quotas:       make(map[string]*model.Quota),
		members:      make(map[memberKey]bool),
	}

	groups, err := st.ListGroups(surveyID)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	for i := range groups {
		idx.groups[groups[i].Code] = &groups[i]
	}

	questions, err := st.ListQuestions(surveyID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	for i := range questions {
		q := &questions[i]
		if q.IsSubquestion() {
			idx.subquestions[childKey{q.ParentID, q.ScaleID, q.Title}] = q
		} else {
			idx.questions[q.Title] = q
		}
	}

	answers, err := st.ListAnswers(surveyID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	for i := range answers {
		a := &answers[i]
		idx.answers[childKey{a.QuestionID, a.ScaleID, a.Code}] = a
	}

	attrs, err := st.ListAttributes(surveyID)
	if err != nil {
		return nil, fmt.Errorf("load attributes: %w", err)
	}
	for i := range attrs {
		idx.putAttribute(attrs[i])
	}

	quotas, err := st.ListQuotas(surveyID)
	if err != nil {
		return nil, fmt.Errorf("load quotas: %w", err)
	}
	for i := range quotas {
		idx.quotas[quotas[i].Name] = &quotas[i]
	}
	members, err := st.ListQuotaMembers(surveyID)
	if err != nil {
		return nil, fmt.Errorf("load quota members: %w", err)
	}
	for _, m := range members {
		idx.members[memberKey{m.QuotaID, m.QuestionID, m.Code}] = true
	}
	return idx, nil
}

// Group returns the group with code, or nil.
func (idx *Index) Group(code string) *model.Group { return idx.groups[code] }

// Question returns the top-level question with title, or nil.
func (idx *Index) Question(title string) *model.Question { return idx.questions[title] }

// Subquestion returns the sub-question of parentID on scale with title, or nil.
func (idx *Index) Subquestion(parentID int64, scale int, title string) *model.Question {
	return idx.subquestions[childKey{parentID, scale, title}]
}

// Answer returns the answer of questionID on scale with code, or nil.
func (idx *Index) Answer(questionID int64, scale int, code string) *model.Answer {
	return idx.answers[childKey{questionID, scale, code}]
}

// Quota returns the quota with name, or nil.
func (idx *Index) Quota(name string) *model.Quota { return idx.quotas[name] }

// Attributes returns the stored values of name on questionID keyed by
// language; the global value is under "".
func (idx *Index) Attributes(questionID int64, name string) map[string]*model.Attribute {
	return idx.attributes[questionID][name]
}

func (idx *Index) putAttribute(a model.Attribute) {
	byName, ok := idx.attributes[a.QuestionID]
	if !ok {
		byName = make(map[string]map[string]*model.Attribute)
		idx.attributes[a.QuestionID] = byName
	}
	byLang, ok := byName[a.Name]
	if !ok {
		byLang = make(map[string]*model.Attribute)
		byName[a.Name] = byLang
	}
	stored := a
	byLang[a.Language] = &stored
}

func (idx *Index) dropAttribute(questionID int64, name, lang string) {
	if byLang, ok := idx.attributes[questionID][name]; ok {
		delete(byLang, lang)
	}
}
