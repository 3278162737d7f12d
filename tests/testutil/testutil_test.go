package testutil

import (
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)

	mockDB.Mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	var n int64
	require.NoError(t, mockDB.DB.Table("products").Count(&n).Error)
	assert.Equal(t, int64(3), n)
	mockDB.ExpectationsWereMet(t)
}

func TestTestContext(t *testing.T) {
	tc := NewTestContext(t)
	assert.Equal(t, http.MethodGet, tc.Context.Request.Method)

	tc.SetRequestID("req-123")
	assert.Equal(t, "req-123", middleware.GetRequestID(tc.Context))

	tc.SetPrincipal(Customer(7))
	p, ok := middleware.GetPrincipal(tc.Context)
	require.True(t, ok)
	assert.Equal(t, int64(7), p.UserID)
	assert.False(t, p.IsAdmin())

	tc.SetHeader("Authorization", "Bearer token")
	assert.Equal(t, "Bearer token", tc.Context.Request.Header.Get("Authorization"))

	tc.Recorder.WriteHeader(http.StatusCreated)
	assert.Equal(t, http.StatusCreated, tc.ResponseCode())
}

func TestContextWithTimeout(t *testing.T) {
	ctx := ContextWithTimeout(t, time.Second)

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.True(t, deadline.After(time.Now()))
}

func TestRequireEventually(t *testing.T) {
	var flag atomic.Bool
	go func() {
		time.Sleep(20 * time.Millisecond)
		flag.Store(true)
	}()

	RequireEventually(t, flag.Load, time.Second, 5*time.Millisecond)
}

func TestAssertNever(t *testing.T) {
	AssertNever(t, func() bool { return false }, 30*time.Millisecond, 10*time.Millisecond)
}

func TestRunHTTPTestCases(t *testing.T) {
	whoami := func(c *gin.Context) {
		p, ok := middleware.GetPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required"))
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"user_id": p.UserID, "admin": p.IsAdmin()}))
	}

	RunHTTPTestCases(t, whoami, []HTTPTestCase{
		{
			Name:           "anonymous",
			ExpectedStatus: http.StatusUnauthorized,
			ExpectedCode:   dto.ErrCodeUnauthorized,
		},
		{
			Name:           "admin",
			Principal:      Admin(1),
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, tc *TestContext) {
				AssertSuccessResponse(t, tc)
				resp := JSONResponseAs[struct {
					Data struct {
						UserID int64 `json:"user_id"`
						Admin  bool  `json:"admin"`
					} `json:"data"`
				}](t, tc)
				assert.Equal(t, int64(1), resp.Data.UserID)
				assert.True(t, resp.Data.Admin)
			},
		},
	})
}

func TestRunHTTPTestCase_SendsJSONBody(t *testing.T) {
	echo := func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(body))
	}

	RunHTTPTestCase(t, echo, HTTPTestCase{
		Name:           "echo",
		Method:         http.MethodPost,
		Body:           map[string]string{"payment_method": "card"},
		ExpectedStatus: http.StatusOK,
		Validate: func(t *testing.T, tc *TestContext) {
			data := JSONResponse(t, tc)["data"].(map[string]any)
			assert.Equal(t, "card", data["payment_method"])
		},
	})
}
