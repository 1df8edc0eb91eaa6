package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testForm struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func TestParseBindErrorMapsFormNames(t *testing.T) {
	var got []FieldError

	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		var f testForm

		err := BindForm(c, &f)
		if err == nil {
			t.Error("expected a binding error")
			c.Status(http.StatusOK)
			return
		}

		got = ParseBindError(err, &f)
		c.Status(http.StatusBadRequest)
	})

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("email=a%40x.com"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if len(got) != 1 {
		t.Fatalf("got %d field errors, want 1: %+v", len(got), got)
	}

	if got[0].Field != "password" || got[0].Rule != "required" {
		t.Fatalf("got %+v, want password/required", got[0])
	}

	if got[0].Message != "is required" {
		t.Fatalf("message %q, want %q", got[0].Message, "is required")
	}
}

func TestParseBindErrorHandlesNonValidatorErrors(t *testing.T) {
	var got []FieldError

	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		var f testForm

		err := BindForm(c, &f)
		if err != nil {
			got = ParseBindError(err, &f)
		}
		c.Status(http.StatusBadRequest)
	})

	// a body that cannot bind as a form at all
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("%zz"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if len(got) == 0 {
		t.Fatal("expected loggable detail for a malformed body")
	}

	if got[0].Rule != "bind" {
		t.Fatalf("got rule %q, want bind", got[0].Rule)
	}
}
