package cloudmanager_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/waabox/cmdeck/internal/api"
	"github.com/waabox/cmdeck/internal/cloudmanager"
)

const rel = "http://ns.adobe.com/adobecloud/rel/"

// recordedRequest is a mutating request captured by fakeAPI.
type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

// fakeAPI serves canned HAL documents by path and records mutations.
type fakeAPI struct {
	mu       sync.Mutex
	docs     map[string]string
	statuses map[string]int
	requests []recordedRequest
	gets     []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.Method != http.MethodGet {
		var body map[string]any
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &body)
		}
		f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: body})
	} else {
		f.gets = append(f.gets, r.URL.RequestURI())
	}
	key := r.Method + " " + r.URL.Path
	if status, ok := f.statuses[key]; ok {
		w.WriteHeader(status)
		return
	}
	if doc, ok := f.docs[key]; ok {
		w.Header().Set("Content-Type", "application/hal+json")
		w.Write([]byte(doc))
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	http.NotFound(w, r)
}

func (f *fakeAPI) mutations() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func (f *fakeAPI) fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.gets...)
}

func newService(t *testing.T, f *fakeAPI) *cloudmanager.Service {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	client, err := api.NewClient(srv.URL, api.Credentials{OrgID: "org", APIKey: "key", AccessToken: "token"})
	require.NoError(t, err)
	return cloudmanager.NewService(client)
}

func r(s string) string { return strings.ReplaceAll(s, "REL/", rel) }

// programGraph returns the documents for program 1 with pipelines 10 (busy)
// and 11 (idle) and environment 20.
func programGraph() *fakeAPI {
	return &fakeAPI{docs: map[string]string{
		"GET /api/programs": `{"_embedded":{"programs":[
			{"id":"1","name":"Program One","_links":{"self":{"href":"/api/program/1"}}},
			{"id":"2","name":"Program Two","_links":{"self":{"href":"/api/program/2"}}}]}}`,
		"GET /api/program/1": r(`{"id":"1","name":"Program One","enabled":true,"_links":{
			"self":{"href":"/api/program/1"},
			"REL/pipelines":{"href":"/api/program/1/pipelines"},
			"REL/environments":{"href":"/api/program/1/environments"}}}`),
		"GET /api/program/2": `{"id":"2","name":"Program Two","_links":{"self":{"href":"/api/program/2"}}}`,
		"GET /api/program/1/pipelines": r(`{"_embedded":{"pipelines":[
			{"id":"10","programId":"1","name":"prod","status":"BUSY",
			 "phases":[{"name":"validate","type":"VALIDATE"},{"name":"build","type":"BUILD","branch":"main","repositoryId":"5","extra":{"keep":true}}],
			 "_links":{"self":{"href":"/api/program/1/pipeline/10"},
			   "REL/execution":{"href":"/api/program/1/pipeline/10/execution"},
			   "REL/execution/id":{"href":"/api/program/1/pipeline/10/execution/{executionId}","templated":true}}},
			{"id":"11","programId":"1","name":"dev","status":"IDLE","phases":[{"type":"DEPLOY"}],
			 "_links":{"self":{"href":"/api/program/1/pipeline/11"},
			   "REL/execution":{"href":"/api/program/1/pipeline/11/execution"}}}]}}`),
		"GET /api/program/1/pipeline/10/execution":     executionDoc,
		"GET /api/program/1/pipeline/10/execution/100": executionDoc,
		"GET /api/program/1/pipeline/10/execution/100/phase/3/step/31/metrics": `{"metrics":[
			{"name":"coverage","severity":"important","passed":false,"actualValue":"40"},
			{"name":"bugs","severity":"critical","passed":false},
			{"name":"smells","severity":"important","passed":true},
			{"name":"informational","severity":"informational","passed":false}]}`,
		"GET /api/program/1/environments": r(`{"_embedded":{"environments":[
			{"id":"20","programId":"1","name":"dev-env","type":"dev","namespace":"ns","cluster":"c1",
			 "availableLogOptions":[{"service":"author","name":"aemerror"},{"service":"dispatcher","name":"httpderror"}],
			 "_links":{"self":{"href":"/api/program/1/environment/20"},
			   "REL/logs":{"href":"/api/program/1/environment/20/logs"}}}]}}`),
	}}
}

var executionDoc = r(`{"id":"100","programId":"1","pipelineId":"10","status":"RUNNING","_embedded":{"stepStates":[
	{"id":"30","action":"build","status":"FINISHED"},
	{"id":"31","action":"codeQuality","status":"WAITING","_links":{
		"REL/pipeline/metrics":{"href":"/api/program/1/pipeline/10/execution/100/phase/3/step/31/metrics"},
		"REL/pipeline/advance":{"href":"/api/program/1/pipeline/10/execution/100/phase/3/step/31/advance"},
		"REL/pipeline/cancel":{"href":"/api/program/1/pipeline/10/execution/100/phase/3/step/31/cancel"}}},
	{"id":"32","action":"deploy","environmentType":"stage","status":"NOT_STARTED"},
	{"id":"33","action":"securityTest","status":"NOT_STARTED"}]}}`)
