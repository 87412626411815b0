package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dentiqcloud/dentiq-backend/internal/requestdata"
)

func TestAllocateIsUnique(t *testing.T) {
	seen := make(map[uuid.UUID]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id := Allocate()
		if id == uuid.Nil {
			t.Fatal("allocated nil id")
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id after %d allocations: %s", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestPreGenerateIDAttachesToExistingRequestData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	var sawID uuid.UUID
	router.POST("/x", func(c *gin.Context) {
		rd := &requestdata.RequestData{UserID: uuid.New()}
		c.Request = c.Request.WithContext(requestdata.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}, PreGenerateID(), func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		if rd != nil {
			sawID = rd.PreGeneratedID
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", w.Code)
	}
	if sawID == uuid.Nil {
		t.Fatal("handler saw no pre-generated id")
	}
}

func TestPreGenerateIDSeedsRequestDataWhenMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	var sawID uuid.UUID
	router.POST("/x", PreGenerateID(), func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		if rd != nil {
			sawID = rd.PreGeneratedID
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	if sawID == uuid.Nil {
		t.Fatal("middleware did not seed request data")
	}
}
