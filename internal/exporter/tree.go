package exporter

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/pavelanni/surveysheet/internal/model"
)

// Store is the read side of the persistence an export needs.
type Store interface {
	ListGroups(surveyID int64) ([]model.Group, error)
	ListQuestions(surveyID int64) ([]model.Question, error)
	ListAnswers(surveyID int64) ([]model.Answer, error)
	ListAttributes(surveyID int64) ([]model.Attribute, error)
	ListQuotas(surveyID int64) ([]model.Quota, error)
	ListQuotaMembers(surveyID int64) ([]model.QuotaMember, error)
}

// tree is the structure of one survey arranged for traversal.
type tree struct {
	groups []model.Group
	// top-level questions by group ID
	questions map[int64][]model.Question
	// sub-questions by parent ID, then scale
	children map[int64]map[int][]model.Question
	answers  map[int64][]model.Answer
	attrs    map[int64][]model.Attribute
	titles   map[int64]string
}

func loadTree(st Store, surveyID int64) (*tree, error) {
	t := &tree{
		questions: make(map[int64][]model.Question),
		children:  make(map[int64]map[int][]model.Question),
		answers:   make(map[int64][]model.Answer),
		attrs:     make(map[int64][]model.Attribute),
		titles:    make(map[int64]string),
	}

	groups, err := st.ListGroups(surveyID)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	slices.SortStableFunc(groups, func(a, b model.Group) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), cmp.Compare(a.ID, b.ID))
	})
	t.groups = groups

	questions, err := st.ListQuestions(surveyID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	slices.SortStableFunc(questions, func(a, b model.Question) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), cmp.Compare(a.ID, b.ID))
	})
	for _, q := range questions {
		if !q.IsSubquestion() {
			t.questions[q.GroupID] = append(t.questions[q.GroupID], q)
			t.titles[q.ID] = q.Title
			continue
		}
		byScale, ok := t.children[q.ParentID]
		if !ok {
			byScale = make(map[int][]model.Question)
			t.children[q.ParentID] = byScale
		}
		byScale[q.ScaleID] = append(byScale[q.ScaleID], q)
	}

	answers, err := st.ListAnswers(surveyID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	slices.SortStableFunc(answers, func(a, b model.Answer) int {
		return cmp.Or(cmp.Compare(a.ScaleID, b.ScaleID), cmp.Compare(a.Order, b.Order), cmp.Compare(a.ID, b.ID))
	})
	for _, a := range answers {
		t.answers[a.QuestionID] = append(t.answers[a.QuestionID], a)
	}

	attrs, err := st.ListAttributes(surveyID)
	if err != nil {
		return nil, fmt.Errorf("load attributes: %w", err)
	}
	for _, a := range attrs {
		t.attrs[a.QuestionID] = append(t.attrs[a.QuestionID], a)
	}
	return t, nil
}
