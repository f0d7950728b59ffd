package salesforce

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Mykobyhub/kibana-connectors/pkg/config"
	"github.com/Mykobyhub/kibana-connectors/pkg/connector/base"
	"github.com/Mykobyhub/kibana-connectors/pkg/json"
	"github.com/Mykobyhub/kibana-connectors/pkg/testutil"
)

const testDataPath = "/services/data/" + APIVersion

var fromTable = regexp.MustCompile(`\bFROM\s+(\w+)`)

// queryTable returns the table of the outermost SELECT, which is always the
// last FROM of a statement built by QueryBuilder.
func queryTable(soql string) string {
	matches := fromTable.FindAllStringSubmatch(soql, -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1][1]
}

var testSObjects = []string{
	"Account", "Opportunity", "Contact", "Lead", "Campaign", "Case", "CaseComment",
	"CaseFeed", "EmailMessage", "User", "ContentDocumentLink",
}

// fakeSalesforce is an in-process Salesforce org serving the canned payloads.
// Handlers may be swapped per test before the first request.
type fakeSalesforce struct {
	t      *testing.T
	server *httptest.Server

	// queryable lists the sobjects the describe endpoint reports as queryable
	queryable []string
	// fields, when set, is the describe response of every sobject
	fields []string
	// withLinks attaches the content document links to every parent record
	withLinks bool

	tokenHandler    http.HandlerFunc
	queryHandler    http.HandlerFunc
	downloadHandler http.HandlerFunc

	mu            sync.Mutex
	tokenHits     int
	queryHits     int
	downloadHits  int
	describeHits  int
	queries       []string
	authorization []string
}

func newFakeSalesforce(t *testing.T) *fakeSalesforce {
	t.Helper()
	f := &fakeSalesforce{t: t, queryable: testSObjects, withLinks: true}

	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, f.handleToken)
	mux.HandleFunc(testDataPath+"/sobjects", f.handleDescribeGlobal)
	mux.HandleFunc(testDataPath+"/sobjects/", f.handleSObject)
	mux.HandleFunc(testDataPath+"/query", f.handleQuery)
	mux.HandleFunc("/barbar", f.handleQuery)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeSalesforce) URL() string {
	return f.server.URL
}

func (f *fakeSalesforce) counts() (token, query, download int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokenHits, f.queryHits, f.downloadHits
}

func (f *fakeSalesforce) recordedQueries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func (f *fakeSalesforce) handleToken(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.tokenHits++
	hits := f.tokenHits
	f.mu.Unlock()

	if f.tokenHandler != nil {
		f.tokenHandler(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": fmt.Sprintf("token-%d", hits),
		"token_type":   "Bearer",
		"signature":    "sig",
	})
}

func (f *fakeSalesforce) handleDescribeGlobal(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.describeHits++
	f.mu.Unlock()

	sobjects := make([]map[string]interface{}, 0, len(f.queryable))
	for _, name := range f.queryable {
		sobjects = append(sobjects, map[string]interface{}{"name": name, "queryable": true})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sobjects": sobjects})
}

func (f *fakeSalesforce) handleSObject(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/describe"):
		f.mu.Lock()
		f.describeHits++
		f.mu.Unlock()

		names := f.fields
		if names == nil {
			names = allTestFields()
		}
		fields := make([]map[string]string, 0, len(names))
		for _, name := range names {
			fields = append(fields, map[string]string{"name": name})
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"fields": fields})
	case strings.HasSuffix(r.URL.Path, "/VersionData"):
		f.mu.Lock()
		f.downloadHits++
		f.mu.Unlock()

		if f.downloadHandler != nil {
			f.downloadHandler(w, r)
			return
		}
		_, _ = w.Write([]byte("chunk1"))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSalesforce) handleQuery(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.queryHits++
	q := r.URL.Query().Get("q")
	f.queries = append(f.queries, q)
	f.authorization = append(f.authorization, r.Header.Get("Authorization"))
	f.mu.Unlock()

	if f.queryHandler != nil {
		f.queryHandler(w, r)
		return
	}

	table := queryTable(q)
	payload, ok := payloadsByTable[table]
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"done": true, "records": []interface{}{}})
		return
	}
	if !f.withLinks || table == "CaseFeed" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
		return
	}

	var body map[string]interface{}
	require.NoError(f.t, json.Unmarshal([]byte(payload), &body))
	var links map[string]interface{}
	require.NoError(f.t, json.Unmarshal([]byte(contentDocumentLinksPayload), &links))
	for _, rec := range body["records"].([]interface{}) {
		rec.(map[string]interface{})["ContentDocumentLinks"] = links
	}
	writeJSON(w, http.StatusOK, body)
}

// allTestFields is every field any query of the package may request.
func allTestFields() []string {
	var out []string
	for _, list := range [][]string{
		accountFields, opportunityFields, contactFields, leadFields, campaignFields, caseFields,
	} {
		out = append(out, list...)
	}
	return append(out, "Name", "Email")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func testRetry() *base.RetryPolicy {
	return base.NewRetryPolicy(3, time.Millisecond).WithDelay(time.Millisecond, 5*time.Millisecond)
}

func testConfig(f *fakeSalesforce) *Config {
	return &Config{
		Domain:            "fake",
		ClientID:          "1234",
		ClientSecret:      "9876",
		BaseURL:           f.URL(),
		APIVersion:        APIVersion,
		Kinds:             append([]string(nil), DefaultKinds...),
		MaxAttachmentSize: defaultMaxAttachmentSize,
		Concurrency:       defaultConcurrency,
	}
}

func newTestClient(t *testing.T, f *fakeSalesforce) *Client {
	return NewClient(testConfig(f), f.server.Client(), testRetry(), nil, testutil.TestLogger(t))
}

// newTestSource initializes a source against f. settings override the
// default credentials map.
func newTestSource(t *testing.T, f *fakeSalesforce, settings map[string]string) *Source {
	t.Helper()

	cfg := config.NewBaseConfig("salesforce-test", SourceName)
	cfg.Reliability.RetryDelay = time.Millisecond
	cfg.Reliability.MaxRetryDelay = 5 * time.Millisecond
	cfg.Security.Credentials = map[string]string{
		"domain":        "fake",
		"client_id":     "1234",
		"client_secret": "9876",
		"base_url":      f.URL(),
	}
	for k, v := range settings {
		cfg.Security.Credentials[k] = v
	}

	src, err := NewSalesforceSource(cfg.Name, cfg)
	require.NoError(t, err)
	s := src.(*Source)
	s.logger = testutil.TestLogger(t)
	s.httpClient = f.server.Client()
	require.NoError(t, s.Initialize(testutil.TestContext(t), cfg))
	return s
}
