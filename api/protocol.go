package api

// Request bodies are capped well above any legitimate payload.
const (
	requestMaxSize = 64 * 1024        // single-entity writes
	importMaxSize  = 16 * 1024 * 1024 // whole-collection restore
)

type createTaskRequest struct {
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Priority string   `json:"priority"`
	DueDate  string   `json:"dueDate"`
	Tags     []string `json:"tags"`
}

type updateTaskRequest struct {
	Title         *string   `json:"title"`
	Category      *string   `json:"category"`
	Priority      *string   `json:"priority"`
	DueDate       *string   `json:"dueDate"`
	Tags          *[]string `json:"tags"`
	Notes         *string   `json:"notes"`
	EstimatedTime *int      `json:"estimatedTime"`
	TimeSpent     *int      `json:"timeSpent"`
}

type addSubtaskRequest struct {
	Title string `json:"title"`
}

type proposalRequest struct {
	ProjectName        string `json:"projectName" validate:"required,min=5"`
	ProjectDescription string `json:"projectDescription" validate:"required,min=20"`
	ProjectEmail       string `json:"projectEmail" validate:"required,email"`
	ProjectContact     string `json:"projectContact" validate:"required,min=2"`
}

type contactRequest struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Message string `json:"message" validate:"required,min=10"`
}

type acceptedResponse struct {
	Reference string `json:"reference"`
}

type errorResponse struct {
	Error string `json:"error"`
}
