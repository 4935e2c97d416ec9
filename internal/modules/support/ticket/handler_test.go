package ticket_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/albedo-support/api/internal/database/databasetest"
	"github.com/albedo-support/api/internal/middleware/authtest"
	"github.com/albedo-support/api/internal/models"
	"github.com/albedo-support/api/internal/modules/notification"
	"github.com/albedo-support/api/internal/modules/support/ticket"
	"github.com/albedo-support/api/internal/pkg/background"
	"github.com/albedo-support/api/internal/pkg/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	class string
	to    string
	data  mail.TicketData
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sent
}

func (f *fakeMailer) record(class, to string, data mail.TicketData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{class, to, data})
	return nil
}

func (f *fakeMailer) SendTicketConfirmation(to string, d mail.TicketData) error {
	return f.record("confirmation", to, d)
}

func (f *fakeMailer) SendTicketResponse(to string, d mail.TicketData) error {
	class := "response"
	if d.Status != "" {
		class = "combined"
	}
	return f.record(class, to, d)
}

func (f *fakeMailer) SendTicketStatusUpdate(to string, d mail.TicketData) error {
	return f.record("status", to, d)
}

func (f *fakeMailer) classes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, s := range f.sent {
		out = append(out, s.class)
	}
	return out
}

func (f *fakeMailer) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notification.Event
}

func (f *fakeNotifier) FanOut(_ context.Context, ev notification.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

type fixture struct {
	kit      *authtest.Kit
	admin    string
	runner   *background.Runner
	mailer   *fakeMailer
	notifier *fakeNotifier
}

func setup(t *testing.T, variant ticket.Variant, prefix, listPath string) *fixture {
	kit := authtest.New(t, databasetest.Open(t))
	f := &fixture{kit: kit, runner: background.New(), mailer: &fakeMailer{}, notifier: &fakeNotifier{}}
	svc := ticket.NewService(kit.DB, variant, f.runner, ticket.WithMailer(f.mailer), ticket.WithNotifier(f.notifier))
	ticket.NewHandler(svc).RegisterRoutes(kit.API, prefix, listPath, kit.Auth)
	f.admin = kit.Bearer(t, kit.CreateUser(t, models.RoleAdmin))
	return f
}

func (f *fixture) submit(t *testing.T, path, body string) *models.TicketModel {
	t.Helper()
	w := f.kit.Do(http.MethodPost, path, "", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp ticket.SubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	f.runner.Flush()
	return resp.Feedback
}

const submitBody = `{"email":"dana@example.com","name":"Dana","subject":"Login issue","message":"I cannot sign in"}`

func TestSubmitReturnsTokenThatResolves(t *testing.T) {
	f := setup(t, ticket.SupportRequest, "/support-request", "")
	created := f.submit(t, "/api/support-request/submit", submitBody)

	assert.NotEmpty(t, created.Token)
	assert.Equal(t, models.TicketStatusPending, created.Status)

	w := f.kit.Do(http.MethodGet, "/api/support-request/"+created.Token, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got models.TicketModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Login issue", got.Subject)

	assert.Equal(t, []string{"confirmation"}, f.mailer.classes())
	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, models.NotificationTypeSupportRequest, f.notifier.events[0].Type)
}

func TestSubmitDropsUnknownCategory(t *testing.T) {
	f := setup(t, ticket.SupportRequest, "/support-request", "")
	cat := models.CategoryModel{Name: "Billing", Color: "#000000"}
	require.NoError(t, f.kit.DB.Create(&cat).Error)

	created := f.submit(t, "/api/support-request/submit",
		`{"email":"a@example.com","subject":"s","message":"m","categoryId":"nope"}`)
	assert.Nil(t, created.CategoryID)

	created = f.submit(t, "/api/support-request/submit",
		fmt.Sprintf(`{"email":"a@example.com","subject":"s","message":"m","categoryId":%q}`, cat.ID))
	require.NotNil(t, created.CategoryID)
	assert.Equal(t, cat.ID, *created.CategoryID)
}

func TestSubmitValidation(t *testing.T) {
	f := setup(t, ticket.SupportRequest, "/support-request", "")
	w := f.kit.Do(http.MethodPost, "/api/support-request/submit", "", `{"email":"not-an-email","subject":"s","message":"m"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownTokenIs404(t *testing.T) {
	f := setup(t, ticket.SupportRequest, "/support-request", "")
	w := f.kit.Do(http.MethodGet, "/api/support-request/missing", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "SupportRequest not found")
}

func TestUpdateEmailClassification(t *testing.T) {
	cases := []struct {
		name string
		body string
		want []string
	}{
		{"response only", `{"admin_response":"We reset your password."}`, []string{"response"}},
		{"status only", `{"status":"in_progress"}`, []string{"status"}},
		{"both", `{"status":"resolved","admin_response":"Done."}`, []string{"combined"}},
		{"blank response", `{"admin_response":"   "}`, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := setup(t, ticket.SupportRequest, "/support-request", "")
			created := f.submit(t, "/api/support-request/submit", submitBody)
			f.mailer.reset()

			w := f.kit.Do(http.MethodPut, "/api/support-request/"+created.ID, f.admin, tc.body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			f.runner.Flush()
			assert.Equal(t, tc.want, f.mailer.classes())
		})
	}
}

func TestUpdateAllowsAnyTransition(t *testing.T) {
	f := setup(t, ticket.SupportRequest, "/support-request", "")
	created := f.submit(t, "/api/support-request/submit", submitBody)

	for _, status := range []string{"closed", "pending", "resolved", "in_progress"} {
		w := f.kit.Do(http.MethodPut, "/api/support-request/"+created.ID, f.admin, fmt.Sprintf(`{"status":%q}`, status))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), fmt.Sprintf(`"status":%q`, status))
	}

	w := f.kit.Do(http.MethodPut, "/api/support-request/"+created.ID, f.admin, `{"status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateKeepsToken(t *testing.T) {
	f := setup(t, ticket.SupportRequest, "/support-request", "")
	created := f.submit(t, "/api/support-request/submit", submitBody)

	w := f.kit.Do(http.MethodPut, "/api/support-request/"+created.ID, f.admin, `{"token":"forged","admin_response":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.TicketModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, created.Token, got.Token)
	require.NotNil(t, got.AdminResponse)
	assert.Equal(t, "hi", *got.AdminResponse)
}

func TestListFiltersAndRequiresAdmin(t *testing.T) {
	f := setup(t, ticket.SupportRequest, "/support-request", "")
	first := f.submit(t, "/api/support-request/submit", submitBody)
	f.submit(t, "/api/support-request/submit", submitBody)
	f.kit.Do(http.MethodPut, "/api/support-request/"+first.ID, f.admin, `{"status":"closed"}`)

	assert.Equal(t, http.StatusUnauthorized, f.kit.Do(http.MethodGet, "/api/support-request", "", "").Code)

	w := f.kit.Do(http.MethodGet, "/api/support-request?status=closed", f.admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.TicketModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)

	w = f.kit.Do(http.MethodGet, "/api/support-request?limit=1", f.admin, "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestDeleteTicket(t *testing.T) {
	f := setup(t, ticket.SupportRequest, "/support-request", "")
	created := f.submit(t, "/api/support-request/submit", submitBody)

	assert.Equal(t, http.StatusNoContent, f.kit.Do(http.MethodDelete, "/api/support-request/"+created.ID, f.admin, "").Code)
	assert.Equal(t, http.StatusNotFound, f.kit.Do(http.MethodDelete, "/api/support-request/"+created.ID, f.admin, "").Code)
}

func TestLegacyFeedbackTickets(t *testing.T) {
	f := setup(t, ticket.LegacyFeedback, "/feedback", "/tickets")
	created := f.submit(t, "/api/feedback/submit", submitBody)

	assert.Equal(t, []string{"confirmation"}, f.mailer.classes())
	assert.Empty(t, f.notifier.events)

	w := f.kit.Do(http.MethodGet, "/api/feedback/"+created.Token, "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	f.mailer.reset()
	w = f.kit.Do(http.MethodPut, "/api/feedback/"+created.ID, f.admin, `{"status":"resolved"}`)
	require.Equal(t, http.StatusOK, w.Code)
	f.runner.Flush()
	assert.Empty(t, f.mailer.classes())

	w = f.kit.Do(http.MethodPut, "/api/feedback/"+created.ID, f.admin, `{"status":"closed","admin_response":"Thanks"}`)
	require.Equal(t, http.StatusOK, w.Code)
	f.runner.Flush()
	assert.Equal(t, []string{"response"}, f.mailer.classes())

	w = f.kit.Do(http.MethodGet, "/api/feedback/tickets", f.admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.TicketModel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	w = f.kit.Do(http.MethodGet, "/api/feedback/missing", "", "")
	assert.Contains(t, w.Body.String(), "Feedback not found")
}
