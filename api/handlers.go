package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"tasks-api/domain"
	"tasks-api/notify"
	"tasks-api/security"
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Store, notifier Notifier, logger *log.Logger) {
	if store == nil {
		panic("store is required")
	}
	if notifier == nil {
		notifier = notify.Disabled{}
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	validate := security.NewValidator()

	e.GET("/api/tasks", listTasks(store, logger))
	e.POST("/api/tasks", createTask(store, notifier))
	e.POST("/api/todo", createTask(store, notifier)) // legacy front-end path
	e.PATCH("/api/tasks/:id", updateTask(store))
	e.DELETE("/api/tasks/:id", deleteTask(store))
	e.POST("/api/tasks/:id/toggle", toggleTask(store))
	e.POST("/api/tasks/:id/subtasks", addSubtask(store))
	e.POST("/api/tasks/:id/subtasks/:sid/toggle", toggleSubtask(store))
	e.DELETE("/api/tasks/:id/subtasks/:sid", deleteSubtask(store))
	e.GET("/api/stats", getStats(store))
	e.GET("/api/tasks/export", exportTasks(store))
	e.POST("/api/tasks/import", importTasks(store), GzipRequestMiddleware())
	e.POST("/api/proposal", postProposal(notifier, validate))
	e.POST("/api/contact", postContact(notifier, validate))
	e.GET("/healthz", healthz())
}

func listTasks(store Store, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, spanCtx := newRequestMetrics(c.Request().Context(), logger, "/api/tasks")
		c.SetRequest(c.Request().WithContext(spanCtx))
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		filter := domain.Filter(c.QueryParam("filter"))
		if filter == "" {
			filter = domain.FilterAll
		}
		if !filter.Valid() {
			metrics.SetErrorStage("invalid_filter")
			err = c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid filter"})
			return err
		}
		sortKey := domain.SortKey(c.QueryParam("sort"))
		if !sortKey.Valid() {
			metrics.SetErrorStage("invalid_sort")
			err = c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid sort key"})
			return err
		}
		search := c.QueryParam("q")
		metrics.SetSearchProvided(search != "")

		queryStart := time.Now()
		tasks := store.Query(domain.Query{Filter: filter, Sort: sortKey, Search: search})
		metrics.ObserveQuery(time.Since(queryStart))
		metrics.SetTasksReturned(len(tasks))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, tasks)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func createTask(store Store, notifier Notifier) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createTaskRequest
		if err := decodeBody(c, &req, requestMaxSize); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		task, err := store.Add(c.Request().Context(), req.Title, domain.Category(req.Category), domain.Priority(req.Priority), req.DueDate, req.Tags)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}

		// Best effort: the task is already committed, a dropped
		// notification must not affect the response.
		notifier.Notify(notify.TaskCreated(task))

		return c.JSON(http.StatusCreated, task)
	}
}

func updateTask(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid task id"})
		}
		var req updateTaskRequest
		if err := decodeBody(c, &req, requestMaxSize); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		patch := domain.TaskPatch{
			Title:         req.Title,
			DueDate:       req.DueDate,
			Tags:          req.Tags,
			Notes:         req.Notes,
			EstimatedTime: req.EstimatedTime,
			TimeSpent:     req.TimeSpent,
		}
		if req.Category != nil {
			cat := domain.Category(*req.Category)
			patch.Category = &cat
		}
		if req.Priority != nil {
			pri := domain.Priority(*req.Priority)
			patch.Priority = &pri
		}
		if err := store.Update(c.Request().Context(), id, patch); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func deleteTask(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid task id"})
		}
		store.Delete(c.Request().Context(), id)
		return c.NoContent(http.StatusNoContent)
	}
}

func toggleTask(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid task id"})
		}
		store.ToggleCompleted(c.Request().Context(), id)
		return c.NoContent(http.StatusNoContent)
	}
}

func addSubtask(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid task id"})
		}
		var req addSubtaskRequest
		if err := decodeBody(c, &req, requestMaxSize); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		store.AddSubtask(c.Request().Context(), id, req.Title)
		return c.NoContent(http.StatusNoContent)
	}
}

func toggleSubtask(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid task id"})
		}
		sid, err := pathID(c, "sid")
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid subtask id"})
		}
		store.ToggleSubtask(c.Request().Context(), id, sid)
		return c.NoContent(http.StatusNoContent)
	}
}

func deleteSubtask(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c, "id")
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid task id"})
		}
		sid, err := pathID(c, "sid")
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid subtask id"})
		}
		store.DeleteSubtask(c.Request().Context(), id, sid)
		return c.NoContent(http.StatusNoContent)
	}
}

func getStats(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, store.Stats())
	}
}

func exportTasks(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, store.Export())
	}
}

func importTasks(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		var tasks []domain.Task
		if err := decodeBody(c, &tasks, importMaxSize); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if err := store.Replace(c.Request().Context(), tasks); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func postProposal(notifier Notifier, validate *validator.Validate) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req proposalRequest
		if err := decodeBody(c, &req, requestMaxSize); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if err := validate.Struct(req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: validationMessage(err)})
		}

		reference := uuid.NewString()
		notifier.Notify(notify.ProposalReceived(
			security.Sanitize(req.ProjectName),
			security.Sanitize(req.ProjectEmail),
			security.Sanitize(req.ProjectContact),
			security.Sanitize(req.ProjectDescription),
			reference,
		))
		return c.JSON(http.StatusAccepted, acceptedResponse{Reference: reference})
	}
}

func postContact(notifier Notifier, validate *validator.Validate) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req contactRequest
		if err := decodeBody(c, &req, requestMaxSize); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if err := validate.Struct(req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: validationMessage(err)})
		}

		reference := uuid.NewString()
		notifier.Notify(notify.ContactReceived(
			security.Sanitize(req.Name),
			security.Sanitize(req.Email),
			security.Sanitize(req.Phone),
			security.Sanitize(req.Message),
		))
		return c.JSON(http.StatusAccepted, acceptedResponse{Reference: reference})
	}
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

// decodeBody decodes a JSON request body with a hard size cap.
func decodeBody(c echo.Context, dst any, maxSize int64) error {
	lr := io.LimitReader(c.Request().Body, maxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	return dec.Decode(dst)
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return "invalid field " + f.Field() + ": failed " + f.Tag() + " check"
	}
	return "invalid request"
}
