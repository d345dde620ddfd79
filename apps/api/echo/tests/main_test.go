package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	. "github.com/ministerio-jovenes/asistencia/apps/api/echo"
	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/attendance"
	"github.com/ministerio-jovenes/asistencia/core/group"
	"github.com/ministerio-jovenes/asistencia/core/member"
	"github.com/ministerio-jovenes/asistencia/core/session"
	"github.com/ministerio-jovenes/asistencia/core/stats"
	emailsvc "github.com/ministerio-jovenes/asistencia/services/email"
	"github.com/ministerio-jovenes/asistencia/storage"
	"github.com/ministerio-jovenes/asistencia/tests"
)

const (
	operatorEmail = "lider@iglesia.pe"
	operatorPwd   = "Cordero#2024"
)

type testApp struct {
	*Server
	gw      *storage.Gateway
	store   *session.Store
	mailSvc *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) *testApp {
	t.Helper()
	conf := core.NewTestConfig()
	conf.Alerts.Recipients = []string{"Pastor <pastor@iglesia.pe>"}
	logger := core.NewNopLogger()

	// set up gateway
	gw := testutil.OpenGateway(conf)

	// set up services
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	member.InitValidators(validate, translator)
	session.InitValidators(validate, translator)

	memberSvc := member.NewService(gw.Members, validate)
	attSvc := attendance.NewService(gw.Attendance)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	store := session.NewStore(gw.Auth, gw.Profiles, validate, logger)
	store.Init(context.Background())
	t.Cleanup(store.Close)

	// set up server
	server := NewServer(conf, &Deps{
		Store:         store,
		Groups:        group.NewCache(group.NewService(gw.Groups), logger),
		MemberSvc:     memberSvc,
		AttendanceSvc: attSvc,
		Roster:        attendance.NewView(memberSvc, attSvc, logger),
		StatsSvc:      stats.NewService(gw.Stats),
		Alerts:        attendance.NewAlertNotifier(attSvc, mailSvc, conf.AlertRecipients(), logger),
		Translator:    translator,
	}, logger)

	return &testApp{Server: server, gw: gw, store: store, mailSvc: mailSvc}
}

// signIn creates the operator account and signs in through the API.
func (app *testApp) signIn(t *testing.T) string {
	t.Helper()
	testutil.CreateAccount(t, app.gw.Accounts, operatorEmail, operatorPwd, "Marta Quispe")

	req, rec := newRequest(http.MethodPost, "/v1/auth/login",
		marchallObj(t, session.Credentials{Email: operatorEmail, Password: operatorPwd}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var state session.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.NotNil(t, state.Session)
	return state.Session.AccessToken
}

// do sends a request and decodes the JSON answer into out when not nil.
func (app *testApp) do(t *testing.T, method, path, token string, body []byte, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req, rec := newAuthRequest(method, path, token, body)
	app.ServeHTTP(rec, req)
	if out != nil && rec.Code < http.StatusBadRequest {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
