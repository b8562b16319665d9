package exam

import "time"

type QuestionType string

const (
	TypeSingle   QuestionType = "single"
	TypeMultiple QuestionType = "multiple"
)

type ExamType string

const (
	ExamNormal  ExamType = "normal"
	ExamMakeup  ExamType = "makeup"
	ExamSpecial ExamType = "special"
)

type AttemptStatus string

const (
	StatusPending  AttemptStatus = "pending"
	StatusFinished AttemptStatus = "finished"
)

type Category struct {
	ID   int64  `json:"categoryId"`
	Name string `json:"categoryName"`
}

type Option struct {
	ID         int64  `json:"optionId"`
	QuestionID int64  `json:"questionId"`
	Content    string `json:"content"`
	IsCorrect  bool   `json:"isCorrect"`
}

type Question struct {
	ID         int64        `json:"questionId"`
	Type       QuestionType `json:"questionType"`
	Content    string       `json:"content"`
	Score      int          `json:"score"`
	CategoryID int64        `json:"categoryId"`
	Options    []Option     `json:"options,omitempty"`
}

type Template struct {
	ID                  int64     `json:"templateId"`
	Name                string    `json:"examName"`
	Type                ExamType  `json:"examType"`
	Duration            int       `json:"duration"`
	TotalScore          int       `json:"totalScore"`
	SingleChoiceCount   int       `json:"singleChoiceCount"`
	MultipleChoiceCount int       `json:"multipleChoiceCount"`
	AvailableStart      time.Time `json:"availableStart"`
	AvailableEnd        time.Time `json:"availableEnd"`
	TargetCategoryIDs   []int64   `json:"targetCategoryIds,omitempty"`
}

// RequiredCount is the fixed size of any attempt built from the template.
func (t Template) RequiredCount() int {
	return t.SingleChoiceCount + t.MultipleChoiceCount
}

type Attempt struct {
	ID          string        `json:"attemptId"`
	UserID      int64         `json:"userId"`
	TemplateID  int64         `json:"templateId"`
	TotalScore  *int          `json:"totalScore"` // nil until finished
	Status      AttemptStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	SubmittedAt *time.Time    `json:"submittedAt,omitempty"`
}

// AttemptQuestion is one snapshot row: which question belongs to the
// attempt, what the user picked, and how it was scored.
type AttemptQuestion struct {
	ID                int64   `json:"attemptQuestionId"`
	AttemptID         string  `json:"attemptId"`
	QuestionID        int64   `json:"questionId"`
	CategoryID        int64   `json:"categoryId"`
	SelectedOptionIDs []int64 `json:"selectedOptionIds"`
	IsCorrect         bool    `json:"isCorrect"`
	Score             int     `json:"score"`
}

// --- Client-facing views. Pre-submission views must never carry the
// correctness flag of an option. ---

type OptionView struct {
	OptionID int64  `json:"optionId"`
	Content  string `json:"content"`
}

type QuestionView struct {
	QuestionID        int64        `json:"questionId"`
	Type              QuestionType `json:"questionType"`
	Content           string       `json:"content"`
	Score             int          `json:"score"`
	SelectedOptionIDs []int64      `json:"selectedOptionIds,omitempty"`
	Options           []OptionView `json:"options"`
}

type StartResult struct {
	AttemptID string         `json:"attemptId"`
	CreatedAt time.Time      `json:"createdAt"`
	Questions []QuestionView `json:"questions"`
}

type AttemptDetail struct {
	AttemptID string         `json:"attemptId"`
	ExamName  string         `json:"examName"`
	ExamType  ExamType       `json:"examType"`
	Duration  int            `json:"duration"`
	Status    AttemptStatus  `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	Questions []QuestionView `json:"questions"`
}

type Answer struct {
	QuestionID        int64   `json:"questionId"`
	SelectedOptionIDs []int64 `json:"selectedOptionIds"`
}

type SubmitResult struct {
	AttemptID   string    `json:"attemptId"`
	TotalScore  int       `json:"totalScore"`
	PassStatus  bool      `json:"passStatus"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type Result struct {
	AttemptID     string    `json:"attemptId"`
	TotalScore    int       `json:"totalScore"`    // template maximum
	ScoreObtained int       `json:"scoreObtained"` // what the user got
	CorrectCount  int       `json:"correctCount"`
	WrongCount    int       `json:"wrongCount"`
	ExamTime      time.Time `json:"examTime"`
	PassStatus    bool      `json:"passStatus"`
}

type WrongQuestion struct {
	QuestionID       int64        `json:"questionId"`
	Content          string       `json:"content"`
	Type             QuestionType `json:"questionType"`
	CorrectOptionIDs []int64      `json:"correctOptionIds"`
	YourOptionIDs    []int64      `json:"yourOptionIds"`
}

type WrongQuestions struct {
	AttemptID      string          `json:"attemptId"`
	WrongQuestions []WrongQuestion `json:"wrongQuestions"`
}

type AttemptRecord struct {
	AttemptID  string        `json:"attemptId"`
	ExamName   string        `json:"examName"`
	ExamType   ExamType      `json:"examType"`
	Status     AttemptStatus `json:"status"`
	Score      *int          `json:"score"` // nil while pending
	Time       time.Time     `json:"time"`
	Duration   int           `json:"duration"`
	TotalScore int           `json:"totalScore"`
}

type AttemptRecords struct {
	UserID  int64           `json:"userId"`
	Records []AttemptRecord `json:"records"`
}

type UserStats struct {
	UserID        int64   `json:"userId"`
	TotalAttempts int     `json:"totalAttempts"`
	FinishedCount int     `json:"finishedCount"`
	AverageScore  float64 `json:"averageScore"` // over finished attempts
}
