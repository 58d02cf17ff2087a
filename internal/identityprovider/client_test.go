package identityprovider

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"idgate/internal/platform/config"
	"idgate/internal/platform/metrics"
	dErrors "idgate/pkg/domain-errors"
)

// fakeKeycloak serves the two token endpoints and the admin users endpoint.
type fakeKeycloak struct {
	mu            sync.Mutex
	tokenForms    []url.Values
	createdUsers  []userRepresentation
	adminAuth     []string
	usersStatus   int
	passwordReply func(w http.ResponseWriter, form url.Values)
}

func (f *fakeKeycloak) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /realms/{realm}/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.mu.Lock()
		f.tokenForms = append(f.tokenForms, r.PostForm)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.PostForm.Get("grant_type") {
		case "client_credentials":
			assert.Equal(t, "master", r.PathValue("realm"))
			_, _ = w.Write([]byte(`{"access_token":"admin-tok","token_type":"Bearer","expires_in":60}`))
		case "password":
			assert.Equal(t, "people", r.PathValue("realm"))
			f.passwordReply(w, r.PostForm)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	mux.HandleFunc("POST /admin/realms/people/users", func(w http.ResponseWriter, r *http.Request) {
		var rep userRepresentation
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rep))
		f.mu.Lock()
		f.createdUsers = append(f.createdUsers, rep)
		f.adminAuth = append(f.adminAuth, r.Header.Get("Authorization"))
		f.mu.Unlock()

		if f.usersStatus == http.StatusCreated {
			w.Header().Set("Location", "/admin/realms/people/users/kc-1")
		}
		w.WriteHeader(f.usersStatus)
	})
	return mux
}

type ClientSuite struct {
	suite.Suite
	kc     *fakeKeycloak
	srv    *httptest.Server
	client *Client
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.kc = &fakeKeycloak{
		usersStatus: http.StatusCreated,
		passwordReply: func(w http.ResponseWriter, form url.Values) {
			_, _ = w.Write([]byte(`{"access_token":"tok","refresh_token":"ref","token_type":"Bearer","expires_in":300,"refresh_expires_in":1800,"scope":"profile email"}`))
		},
	}
	s.srv = httptest.NewServer(s.kc.handler(s.T()))
	s.client = New(config.IdentityProvider{
		BaseURL:           s.srv.URL,
		Realm:             "people",
		ClientID:          "gateway",
		ClientSecret:      "gateway-secret",
		AdminRealm:        "master",
		AdminClientID:     "admin-cli",
		AdminClientSecret: "admin-secret",
		Timeout:           2 * time.Second,
	}, metrics.NewNoop())
}

func (s *ClientSuite) TearDownTest() {
	s.srv.Close()
}

func (s *ClientSuite) account() Account {
	return Account{
		Username:  "a@x.com",
		Email:     "a@x.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Enabled:   true,
		Guid:      "p-1",
		Password:  "p",
	}
}

func (s *ClientSuite) TestCreateAccount_Created() {
	resp, err := s.client.CreateAccount(s.T().Context(), s.account())
	s.Require().NoError(err)
	s.True(resp.Created())
	s.Equal("/admin/realms/people/users/kc-1", resp.Location)

	s.Require().Len(s.kc.createdUsers, 1)
	rep := s.kc.createdUsers[0]
	s.Equal("a@x.com", rep.Username)
	s.True(rep.Enabled)
	s.Equal([]string{"p-1"}, rep.Attributes["GUID"])
	s.Require().Len(rep.Credentials, 1)
	s.Equal("password", rep.Credentials[0].Type)
	s.Equal("p", rep.Credentials[0].Value)
	s.False(rep.Credentials[0].Temporary)

	s.Equal("Bearer admin-tok", s.kc.adminAuth[0])
	admin := s.kc.tokenForms[0]
	s.Equal("client_credentials", admin.Get("grant_type"))
	s.Equal("admin-cli", admin.Get("client_id"))
	s.Equal("admin-secret", admin.Get("client_secret"))
}

func (s *ClientSuite) TestCreateAccount_ReusesAdminToken() {
	for range 2 {
		_, err := s.client.CreateAccount(s.T().Context(), s.account())
		s.Require().NoError(err)
	}

	s.Len(s.kc.createdUsers, 2)
	s.Require().Len(s.kc.tokenForms, 1, "admin token fetched once while still valid")
	s.Equal("client_credentials", s.kc.tokenForms[0].Get("grant_type"))
	s.Equal([]string{"Bearer admin-tok", "Bearer admin-tok"}, s.kc.adminAuth)
}

func (s *ClientSuite) TestCreateAccount_NonCreatedStatusIsNotAnError() {
	s.kc.usersStatus = http.StatusConflict

	resp, err := s.client.CreateAccount(s.T().Context(), s.account())
	s.Require().NoError(err)
	s.False(resp.Created())
	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *ClientSuite) TestCreateAccount_TransportFailure() {
	s.srv.Close()

	_, err := s.client.CreateAccount(s.T().Context(), s.account())
	s.Require().Error(err)
}

func (s *ClientSuite) TestIssueToken_SendsPasswordGrantForm() {
	tok, err := s.client.IssueToken(s.T().Context(), "a@x.com", "p")
	s.Require().NoError(err)

	s.Equal("tok", tok.AccessToken)
	s.Equal("ref", tok.RefreshToken)
	s.Equal("Bearer", tok.TokenType)
	s.Equal(int64(300), tok.ExpiresIn)
	s.Equal(int64(1800), tok.RefreshExpiresIn)
	s.Equal("profile email", tok.Scope)

	s.Require().Len(s.kc.tokenForms, 1)
	form := s.kc.tokenForms[0]
	s.Equal("password", form.Get("grant_type"))
	s.Equal("a@x.com", form.Get("username"))
	s.Equal("p", form.Get("password"))
	s.Equal("gateway", form.Get("client_id"))
	s.Equal("gateway-secret", form.Get("client_secret"))
}

func (s *ClientSuite) TestIssueToken_RejectedIsLoginFailed() {
	s.kc.passwordReply = func(w http.ResponseWriter, form url.Values) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid user credentials"}`))
	}

	tok, err := s.client.IssueToken(s.T().Context(), "a@x.com", "wrong")
	s.Require().Error(err)
	s.Nil(tok)
	s.True(dErrors.HasCode(err, dErrors.CodeLoginFailed))
	de, _ := dErrors.As(err)
	s.Equal("check credentials", de.Message)
	s.Contains(err.Error(), "a@x.com")
	s.Len(s.kc.tokenForms, 1, "no retry")
}

func (s *ClientSuite) TestIssueToken_TransportFailureIsLoginFailed() {
	s.srv.Close()

	_, err := s.client.IssueToken(s.T().Context(), "a@x.com", "p")
	s.True(dErrors.HasCode(err, dErrors.CodeLoginFailed))
}

func TestTokenURL(t *testing.T) {
	assert.Equal(t,
		"http://kc:8080/realms/people/protocol/openid-connect/token",
		TokenURL("http://kc:8080/", "people"))
}

func TestExtraInt64(t *testing.T) {
	assert.Equal(t, int64(300), extraInt64(float64(300)))
	assert.Equal(t, int64(300), extraInt64("300"))
	assert.Equal(t, int64(300), extraInt64(json.Number("300")))
	assert.Zero(t, extraInt64(nil))
}
