package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MoosaAfzal2/poetry-todo-api/internal/domain"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/http/middleware"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/service"
)

// TodoHandler exposes the ownership-scoped todo CRUD routes. Every route
// runs behind the identity resolver.
type TodoHandler struct {
	Todos *service.TodoService
}

func NewTodoHandler(todos *service.TodoService) *TodoHandler {
	return &TodoHandler{Todos: todos}
}

func (h *TodoHandler) List(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "error_description": "Could not validate credentials."})
		return
	}

	todos, err := h.Todos.List(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (h *TodoHandler) Get(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "error_description": "Could not validate credentials."})
		return
	}
	todoID, ok := parseTodoID(c)
	if !ok {
		return
	}

	todo, err := h.Todos.Get(c.Request.Context(), todoID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) Create(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "error_description": "Could not validate credentials."})
		return
	}

	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		IsCompleted bool   `json:"iscompleted"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "error_description": "Invalid payload."})
		return
	}

	created, err := h.Todos.Create(c.Request.Context(), user.ID, req.Title, req.Description, req.IsCompleted)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

func (h *TodoHandler) Update(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "error_description": "Could not validate credentials."})
		return
	}
	todoID, ok := parseTodoID(c)
	if !ok {
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		IsCompleted *bool   `json:"iscompleted"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "error_description": "Invalid payload."})
		return
	}

	updated, err := h.Todos.Update(c.Request.Context(), todoID, user.ID, domain.TodoPatch{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *TodoHandler) Delete(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "error_description": "Could not validate credentials."})
		return
	}
	todoID, ok := parseTodoID(c)
	if !ok {
		return
	}

	deleted, err := h.Todos.Delete(c.Request.Context(), todoID, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.Message{Message: "Todo with id: " + deleted.ID.String() + " deleted successfully"})
}

func parseTodoID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("todo_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "error_description": "Invalid todo id."})
		return uuid.UUID{}, false
	}
	return id, true
}
