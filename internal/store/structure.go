package store

import "github.com/pavelanni/surveysheet/internal/model"

// ListGroups returns the groups of a survey in sort order, with texts.
func (s *Store) ListGroups(surveyID int64) ([]model.Group, error) {
	rows, err := s.db.Query(
		`SELECT id, survey_id, code, relevance, sort_order FROM question_groups
		 WHERE survey_id = ? ORDER BY sort_order, id`, surveyID,
	)
	if err != nil {
		return nil, err
	}
	var groups []model.Group
	byID := make(map[int64]int)
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.SurveyID, &g.Code, &g.Relevance, &g.Order); err != nil {
			rows.Close()
			return nil, err
		}
		g.L10ns = make(map[string]model.GroupL10n)
		byID[g.ID] = len(groups)
		groups = append(groups, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(
		`SELECT l.group_id, l.language, l.name, l.description FROM group_l10ns l
		 JOIN question_groups g ON g.id = l.group_id WHERE g.survey_id = ?`, surveyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var lang string
		var l model.GroupL10n
		if err := rows.Scan(&id, &lang, &l.Name, &l.Description); err != nil {
			return nil, err
		}
		if i, ok := byID[id]; ok {
			groups[i].L10ns[lang] = l
		}
	}
	return groups, rows.Err()
}

// SaveGroup inserts g when g.ID is zero and updates it otherwise. Texts
// are saved separately with SaveGroupL10n.
func (s *Store) SaveGroup(g *model.Group) error {
	if g.ID != 0 {
		_, err := s.db.Exec(
			`UPDATE question_groups SET code = ?, relevance = ?, sort_order = ? WHERE id = ?`,
			g.Code, g.Relevance, g.Order, g.ID,
		)
		return err
	}
	res, err := s.db.Exec(
		`INSERT INTO question_groups (survey_id, code, relevance, sort_order) VALUES (?, ?, ?, ?)`,
		g.SurveyID, g.Code, g.Relevance, g.Order,
	)
	if err != nil {
		return err
	}
	g.ID, err = res.LastInsertId()
	return err
}

// SaveGroupL10n upserts the text of a group in one language.
func (s *Store) SaveGroupL10n(groupID int64, lang string, l model.GroupL10n) error {
	_, err := s.db.Exec(
		`INSERT INTO group_l10ns (group_id, language, name, description) VALUES (?, ?, ?, ?)
		 ON CONFLICT(group_id, language) DO UPDATE SET name = ?, description = ?`,
		groupID, lang, l.Name, l.Description, l.Name, l.Description,
	)
	return err
}

const questionColumns = `id, survey_id, group_id, parent_id, scale_id, title, type, relevance, mandatory, same_script, theme, sort_order`

func scanQuestion(sc interface{ Scan(...any) error }, q *model.Question) error {
	return sc.Scan(&q.ID, &q.SurveyID, &q.GroupID, &q.ParentID, &q.ScaleID, &q.Title, &q.Type,
		&q.Relevance, &q.Mandatory, &q.SameScript, &q.Theme, &q.Order)
}

// ListQuestions returns all questions and sub-questions of a survey with
// their texts. Top-level questions come in group and sort order, each
// parent's sub-questions in scale and sort order.
func (s *Store) ListQuestions(surveyID int64) ([]model.Question, error) {
	rows, err := s.db.Query(
		`SELECT `+questionColumns+` FROM questions WHERE survey_id = ?
		 ORDER BY parent_id, scale_id, sort_order, id`, surveyID,
	)
	if err != nil {
		return nil, err
	}
	var questions []model.Question
	byID := make(map[int64]int)
	for rows.Next() {
		var q model.Question
		if err := scanQuestion(rows, &q); err != nil {
			rows.Close()
			return nil, err
		}
		q.L10ns = make(map[string]model.QuestionL10n)
		byID[q.ID] = len(questions)
		questions = append(questions, q)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(
		`SELECT l.question_id, l.language, l.text, l.help, l.script FROM question_l10ns l
		 JOIN questions q ON q.id = l.question_id WHERE q.survey_id = ?`, surveyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var lang string
		var l model.QuestionL10n
		if err := rows.Scan(&id, &lang, &l.Text, &l.Help, &l.Script); err != nil {
			return nil, err
		}
		if i, ok := byID[id]; ok {
			questions[i].L10ns[lang] = l
		}
	}
	return questions, rows.Err()
}

// SaveQuestion inserts q when q.ID is zero and updates it otherwise.
func (s *Store) SaveQuestion(q *model.Question) error {
	if q.ID != 0 {
		_, err := s.db.Exec(
			`UPDATE questions SET group_id = ?, parent_id = ?, scale_id = ?, title = ?, type = ?, relevance = ?,
			 mandatory = ?, same_script = ?, theme = ?, sort_order = ? WHERE id = ?`,
			q.GroupID, q.ParentID, q.ScaleID, q.Title, q.Type, q.Relevance,
			q.Mandatory, q.SameScript, q.Theme, q.Order, q.ID,
		)
		return err
	}
	res, err := s.db.Exec(
		`INSERT INTO questions (survey_id, group_id, parent_id, scale_id, title, type, relevance, mandatory, same_script, theme, sort_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.SurveyID, q.GroupID, q.ParentID, q.ScaleID, q.Title, q.Type, q.Relevance,
		q.Mandatory, q.SameScript, q.Theme, q.Order,
	)
	if err != nil {
		return err
	}
	q.ID, err = res.LastInsertId()
	return err
}

// SaveQuestionL10n upserts the texts of a question in one language.
func (s *Store) SaveQuestionL10n(questionID int64, lang string, l model.QuestionL10n) error {
	_, err := s.db.Exec(
		`INSERT INTO question_l10ns (question_id, language, text, help, script) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(question_id, language) DO UPDATE SET text = ?, help = ?, script = ?`,
		questionID, lang, l.Text, l.Help, l.Script, l.Text, l.Help, l.Script,
	)
	return err
}

// ListAnswers returns all answers of a survey's questions with texts, in
// question, scale and sort order.
func (s *Store) ListAnswers(surveyID int64) ([]model.Answer, error) {
	rows, err := s.db.Query(
		`SELECT a.id, a.question_id, a.code, a.scale_id, a.sort_order FROM answers a
		 JOIN questions q ON q.id = a.question_id WHERE q.survey_id = ?
		 ORDER BY a.question_id, a.scale_id, a.sort_order, a.id`, surveyID,
	)
	if err != nil {
		return nil, err
	}
	var answers []model.Answer
	byID := make(map[int64]int)
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Code, &a.ScaleID, &a.Order); err != nil {
			rows.Close()
			return nil, err
		}
		a.L10ns = make(map[string]model.AnswerL10n)
		byID[a.ID] = len(answers)
		answers = append(answers, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(
		`SELECT l.answer_id, l.language, l.text FROM answer_l10ns l
		 JOIN answers a ON a.id = l.answer_id JOIN questions q ON q.id = a.question_id
		 WHERE q.survey_id = ?`, surveyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var lang string
		var l model.AnswerL10n
		if err := rows.Scan(&id, &lang, &l.Text); err != nil {
			return nil, err
		}
		if i, ok := byID[id]; ok {
			answers[i].L10ns[lang] = l
		}
	}
	return answers, rows.Err()
}

// SaveAnswer inserts a when a.ID is zero and updates it otherwise.
func (s *Store) SaveAnswer(a *model.Answer) error {
	if a.ID != 0 {
		_, err := s.db.Exec(
			`UPDATE answers SET code = ?, scale_id = ?, sort_order = ? WHERE id = ?`,
			a.Code, a.ScaleID, a.Order, a.ID,
		)
		return err
	}
	res, err := s.db.Exec(
		`INSERT INTO answers (question_id, code, scale_id, sort_order) VALUES (?, ?, ?, ?)`,
		a.QuestionID, a.Code, a.ScaleID, a.Order,
	)
	if err != nil {
		return err
	}
	a.ID, err = res.LastInsertId()
	return err
}

// SaveAnswerL10n upserts the text of an answer in one language.
func (s *Store) SaveAnswerL10n(answerID int64, lang string, l model.AnswerL10n) error {
	_, err := s.db.Exec(
		`INSERT INTO answer_l10ns (answer_id, language, text) VALUES (?, ?, ?)
		 ON CONFLICT(answer_id, language) DO UPDATE SET text = ?`,
		answerID, lang, l.Text, l.Text,
	)
	return err
}

