package validator

import (
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type moveRequest struct {
	Direction string `validate:"required,direction"`
	Blocks    int    `validate:"min=1,max=10"`
}

type createRequest struct {
	Name string `validate:"battle_name"`
}

func TestCustomValidator(t *testing.T) {
	v := New(StringRule{Tag: "direction", Check: func(s string) bool {
		return strings.EqualFold(s, "NORTH") || strings.EqualFold(s, "SOUTH")
	}})

	tests := []struct {
		name    string
		input   interface{}
		wantErr string
	}{
		{name: "合法移动", input: &moveRequest{Direction: "north", Blocks: 3}},
		{name: "非法方向", input: &moveRequest{Direction: "UP", Blocks: 3}, wantErr: "Direction: direction"},
		{name: "步数越界", input: &moveRequest{Direction: "NORTH", Blocks: 11}, wantErr: "Blocks: max=10"},
		{name: "合法名称", input: &createRequest{Name: "Arena One"}},
		{name: "空白名称", input: &createRequest{Name: "   "}, wantErr: "Name: battle_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			httpErr, ok := err.(*echo.HTTPError)
			require.True(t, ok)
			assert.Equal(t, 400, httpErr.Code)
			assert.Contains(t, httpErr.Message, tt.wantErr)
		})
	}
}
