package artist

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anoixa/daijo-gallery/internal/artist"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, err := artist.NewService(nil, "")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/artist", NewHandler(svc).GetProfile)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/artist", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string         `json:"status"`
		Data   artist.Profile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "山田　大乗", body.Data.Name)
	assert.Len(t, body.Data.Career, 4)
	assert.NotEmpty(t, body.Data.BioHTML)
}
