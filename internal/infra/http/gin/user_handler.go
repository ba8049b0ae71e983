package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"driveshare/internal/app/commands"
	"driveshare/internal/app/dto"
	usersapp "driveshare/internal/app/handlers/users"
	"driveshare/internal/app/queries"
)

type UserHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type registerUserRequest struct {
	Email string   `json:"email" binding:"required"`
	Name  string   `json:"name" binding:"required"`
	Phone string   `json:"phone"`
	Roles []string `json:"roles"`
}

func (h UserHandler) Register(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := usersapp.RegisterUserCommand{
		CommandID: uuid.NewString(),
		Email:     req.Email,
		Name:      req.Name,
		Phone:     req.Phone,
		Roles:     req.Roles,
	}
	result, err := commands.Dispatch[usersapp.RegisterUserCommand, *usersapp.RegisterUserResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h UserHandler) Get(c *gin.Context) {
	q := usersapp.GetUserQuery{UserID: c.Param("id")}
	result, err := queries.Ask[usersapp.GetUserQuery, dto.UserView](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h UserHandler) Transactions(c *gin.Context) {
	q := usersapp.UserTransactionsQuery{UserID: c.Param("id")}
	result, err := queries.Ask[usersapp.UserTransactionsQuery, dto.TransactionCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ UserHTTP = UserHandler{}
