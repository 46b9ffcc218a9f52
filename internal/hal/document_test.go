package hal_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waabox/cmdeck/internal/hal"
)

const pipelineDoc = `{
  "id": "7",
  "status": "BUSY",
  "_links": {
    "self": {"href": "/api/program/1/pipeline/7"},
    "http://ns.adobe.com/adobecloud/rel/execution/id": {"href": "/api/program/1/pipeline/7/execution/{executionId}", "templated": true},
    "http://ns.adobe.com/adobecloud/rel/logs/download": [
      {"href": "/logs/a"},
      {"href": "/logs/b", "name": "b"}
    ]
  },
  "_embedded": {
    "stepStates": [{"action": "build"}, {"action": "deploy"}],
    "owner": {"name": "single"}
  }
}`

func TestParse_RejectsNonObject(t *testing.T) {
	_, err := hal.Parse([]byte(`[1,2]`))
	assert.Error(t, err)

	_, err = hal.Parse([]byte(``))
	assert.ErrorIs(t, err, hal.ErrEmpty)

	_, err = hal.Read(strings.NewReader(" \n\t"))
	assert.ErrorIs(t, err, hal.ErrEmpty)
}

func TestDocument_LinkSingleAndArray(t *testing.T) {
	doc, err := hal.Read(strings.NewReader(pipelineDoc))
	require.NoError(t, err)

	self, ok := doc.Link("self")
	require.True(t, ok)
	assert.Equal(t, "/api/program/1/pipeline/7", self.Href)

	downloads := doc.Links("http://ns.adobe.com/adobecloud/rel/logs/download")
	require.Len(t, downloads, 2)
	assert.Equal(t, "/logs/a", downloads[0].Href)
	assert.Equal(t, "b", downloads[1].Name)

	first, ok := doc.Link("http://ns.adobe.com/adobecloud/rel/logs/download")
	require.True(t, ok)
	assert.Equal(t, "/logs/a", first.Href)

	_, ok = doc.Link("missing")
	assert.False(t, ok)
	assert.Empty(t, doc.Links("missing"))
}

func TestDocument_Embedded(t *testing.T) {
	doc, err := hal.Parse([]byte(pipelineDoc))
	require.NoError(t, err)

	steps := doc.Embedded("stepStates")
	require.Len(t, steps, 2)
	assert.Equal(t, "deploy", steps[1].String("action"))

	owner := doc.Embedded("owner")
	require.Len(t, owner, 1)
	assert.Equal(t, "single", owner[0].String("name"))

	assert.True(t, doc.HasEmbedded("stepStates"))
	assert.False(t, doc.HasEmbedded("pipelines"))
	assert.Nil(t, doc.Embedded("pipelines"))
}

func TestDocument_Decode(t *testing.T) {
	doc, err := hal.Parse([]byte(pipelineDoc))
	require.NoError(t, err)

	var v struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, doc.Decode(&v))
	assert.Equal(t, "7", v.ID)
	assert.Equal(t, "BUSY", v.Status)
}

func TestLink_ExpandTemplate(t *testing.T) {
	doc, err := hal.Parse([]byte(pipelineDoc))
	require.NoError(t, err)

	link, ok := doc.Link("http://ns.adobe.com/adobecloud/rel/execution/id")
	require.True(t, ok)
	require.True(t, link.Templated)

	href, err := link.Expand(map[string]string{"executionId": "42"})
	require.NoError(t, err)
	assert.Equal(t, "/api/program/1/pipeline/7/execution/42", href)
}

func TestLink_ExpandNonTemplatedReturnsHref(t *testing.T) {
	href, err := hal.Link{Href: "/plain/{x}"}.Expand(map[string]string{"x": "1"})
	require.NoError(t, err)
	assert.Equal(t, "/plain/{x}", href)
}
