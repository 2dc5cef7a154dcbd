package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaoxiao0301/lx-source-resolver/pkg/errors"
)

var mainSchema = Schema{
	CodePath:    "status",
	SuccessCode: 200,
	SuccessPath: "success",
	DataPath:    "data",
	URLPath:     "url",
	NamePath:    "name",
	ArtistPath:  "artists",
	QualityPath: "level",
}

var rootSchema = Schema{
	URLPath:     "url",
	QualityPath: "br",
}

func TestValidate_TruthySuccessFlag(t *testing.T) {
	for _, flag := range []string{`"yes"`, `1`, `"false"`, `{}`} {
		raw := []byte(`{"status":200,"success":` + flag + `,"data":{"url":"https://cdn.example/a.mp3"}}`)
		res := Validate(raw, mainSchema)
		assert.True(t, res.OK, "success=%s", flag)
	}
}

func TestValidate_Success(t *testing.T) {
	raw := []byte(`{"status":200,"success":true,"data":{"url":"https://cdn.example/a.mp3","name":"晴天","artists":"周杰伦","level":"lossless"}}`)

	res := Validate(raw, mainSchema)
	require.True(t, res.OK, res.Detail)
	assert.Equal(t, "https://cdn.example/a.mp3", res.URL)
	assert.Equal(t, Metadata{Name: "晴天", Artist: "周杰伦", Quality: "lossless"}, res.Meta)
	assert.Nil(t, res.Err())
}

func TestValidate_RootSchema(t *testing.T) {
	res := Validate([]byte(`{"url":"http://m.example/b.flac","br":999,"size":1024}`), rootSchema)
	require.True(t, res.OK, res.Detail)
	assert.Equal(t, "http://m.example/b.flac", res.URL)
	assert.Equal(t, "999", res.Meta.Quality)
}

func TestValidate_JSONAsText(t *testing.T) {
	raw := []byte(`"{\"status\":200,\"success\":true,\"data\":{\"url\":\"https://cdn.example/c.mp3\"}}"`)
	res := Validate(raw, mainSchema)
	require.True(t, res.OK, res.Detail)
	assert.Equal(t, "https://cdn.example/c.mp3", res.URL)
}

func TestValidate_ArtistArray(t *testing.T) {
	raw := []byte(`{"status":200,"success":true,"data":{"url":"https://x.example/a","artists":[{"name":"A"},{"name":"B"}]}}`)
	res := Validate(raw, mainSchema)
	require.True(t, res.OK)
	assert.Equal(t, "A/B", res.Meta.Artist)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want errors.Kind
	}{
		{"nil body", "", errors.KindEmptyResponse},
		{"blank body", "   \n", errors.KindEmptyResponse},
		{"too short", "{ }", errors.KindInvalidResponse},
		{"not json", "<html>502 Bad Gateway</html>", errors.KindJSONParseError},
		{"json array", `[{"url":"https://x"}]`, errors.KindInvalidResponse},
		{"bad status", `{"status":400,"success":true,"data":{"url":"https://x.example"}}`, errors.KindAPIError},
		{"not success", `{"status":200,"success":false,"message":"limited"}`, errors.KindAPIFailed},
		{"zero success", `{"status":200,"success":0}`, errors.KindAPIFailed},
		{"empty success", `{"status":200,"success":""}`, errors.KindAPIFailed},
		{"no data", `{"status":200,"success":true}`, errors.KindNoData},
		{"null data", `{"status":200,"success":true,"data":null}`, errors.KindNoData},
		{"empty data object", `{"status":200,"success":true,"data":{}}`, errors.KindNoAudioURL},
		{"empty url", `{"status":200,"success":true,"data":{"url":""}}`, errors.KindNoAudioURL},
		{"relative url", `{"status":200,"success":true,"data":{"url":"/a.mp3"}}`, errors.KindInvalidURL},
		{"ftp url", `{"status":200,"success":true,"data":{"url":"ftp://x.example/a.mp3"}}`, errors.KindInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate([]byte(tt.raw), mainSchema)
			assert.False(t, res.OK)
			assert.Equal(t, tt.want, res.Kind, res.Detail)
			assert.NotEmpty(t, res.Detail)
			assert.True(t, errors.IsKind(res.Err(), tt.want))
		})
	}
}

func TestValidate_NilPayload(t *testing.T) {
	res := Validate(nil, mainSchema)
	assert.Equal(t, errors.KindEmptyResponse, res.Kind)
}

func TestValidate_APIErrorCarriesCode(t *testing.T) {
	res := Validate([]byte(`{"status":400,"msg":"bad id"}`), mainSchema)
	assert.Equal(t, errors.KindAPIError, res.Kind)
	assert.Equal(t, int64(400), res.Code)
	assert.Equal(t, map[string]interface{}{"code": int64(400)}, res.Err().Details)
}

// A payload that fails several checks reports the earliest one.
func TestValidate_Ordering(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want errors.Kind
	}{
		{"non-json beats missing url", "status=200&success=true", errors.KindJSONParseError},
		{"status beats success flag", `{"status":500,"success":false}`, errors.KindAPIError},
		{"success flag beats missing data", `{"status":200,"success":false}`, errors.KindAPIFailed},
		{"missing url beats everything after", `{"status":200,"success":true,"data":{"name":"x"}}`, errors.KindNoAudioURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate([]byte(tt.raw), mainSchema).Kind)
		})
	}
}

func TestValidate_OptionalFieldsAbsent(t *testing.T) {
	// status and success are only checked when present
	res := Validate([]byte(`{"data":{"url":"https://x.example/a.mp3"}}`), mainSchema)
	assert.True(t, res.OK)
}
