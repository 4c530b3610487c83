package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lempar/academia/internal/app/models"
	"github.com/lempar/academia/internal/config"
	"github.com/lempar/academia/internal/pkg/auth"
	"github.com/lempar/academia/internal/pkg/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingStub struct{ err error }

func (p pingStub) Ping(context.Context) error { return p.err }

type portal struct {
	router   *gin.Engine
	students *testutil.StudentStore
	accounts *testutil.AccountStore
	pictures *testutil.PictureStore
}

func newPortal(t *testing.T) *portal {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.Mode = config.ModeTest
	cfg.Session.SecretKey = "portal-test-secret-portal-test-secret"
	cfg.Session.Name = "academia_session"
	cfg.Session.MaxAge = 3600
	cfg.Uploads.Folder = t.TempDir()
	cfg.Uploads.MaxContentLength = 4 << 20

	p := &portal{
		students: testutil.NewStudentStore(),
		accounts: testutil.NewAccountStore(),
		pictures: &testutil.PictureStore{},
	}
	deps := BuildWithStores(Stores{Students: p.students, Accounts: p.accounts}, p.pictures, pingStub{}, zerolog.Nop())

	router, err := SetupRouter(cfg, deps, zerolog.Nop())
	require.NoError(t, err)
	p.router = router
	return p
}

func (p *portal) seedAccount(t *testing.T, username, rut string, role models.RoleType) *models.Account {
	t.Helper()
	hash, err := auth.HashPassword("clave123")
	require.NoError(t, err)
	a := &models.Account{
		RUT:          rut,
		Username:     username,
		Email:        username + "@lempar.com",
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, p.accounts.Create(context.Background(), a))
	return a
}

func (p *portal) seedStudent(t *testing.T, rut string) *models.Student {
	t.Helper()
	s := &models.Student{
		RUT:       rut,
		FirstName: "Camila",
		LastName:  "Rojas",
		BirthDate: time.Date(2010, time.March, 3, 0, 0, 0, 0, time.UTC),
		Belt:      "Amarillo",
		Level:     1,
	}
	require.NoError(t, p.students.Create(context.Background(), s))
	return s
}

// client keeps the latest value of every cookie like a browser would
type client struct {
	t       *testing.T
	router  http.Handler
	cookies map[string]*http.Cookie
}

func (p *portal) client(t *testing.T) *client {
	return &client{t: t, router: p.router, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return w
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) postMultipart(path string, fields map[string]string, filename string, data []byte) *httptest.ResponseRecorder {
	body, contentType := testutil.MultipartBody(c.t, fields, filename, data)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	return c.do(req)
}

func (c *client) login(username string) {
	c.t.Helper()
	w := c.postForm("/login", url.Values{"username": {username}, "password": {"clave123"}})
	require.Equal(c.t, http.StatusFound, w.Code, w.Body.String())
}

func studentFields(rut string) map[string]string {
	return map[string]string{
		"rut":              rut,
		"nombre":           "Diego",
		"apellido":         "Muñoz",
		"fecha_nacimiento": "1995-05-15",
		"cinturon":         "Azul",
		"nivel":            "2",
	}
}

func TestAdminCreatesStudentAndReadsItBackAsJSON(t *testing.T) {
	p := newPortal(t)
	p.seedAccount(t, "admin", "00.000.000-0", models.RoleAdmin)

	c := p.client(t)
	c.login("admin")

	w := c.postMultipart("/alumnos/crear", studentFields("12.345.678-5"), "foto.png", testutil.PNG(t, 8, 8))
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, "/alumnos", w.Header().Get("Location"))

	list := c.get("/alumnos")
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), "Alumno creado exitosamente")
	assert.Contains(t, list.Body.String(), "12.345.678-5")

	w = c.get("/api/alumno/1")
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.EqualValues(t, 1, got["id"])
	assert.Equal(t, "12.345.678-5", got["rut"])
	assert.Equal(t, "Diego", got["nombre"])
	assert.Equal(t, "Muñoz", got["apellido"])
	assert.Equal(t, "1995-05-15", got["fecha_nacimiento"])
	assert.Equal(t, "Azul", got["cinturon"])
	assert.EqualValues(t, 2, got["nivel"])
	assert.Equal(t, "Azul - 2 rayitas", got["cinturon_completo"])
	assert.Equal(t, "foto1.png", got["foto"])

	stored, err := p.students.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.EqualValues(t, stored.AgeAt(time.Now()), got["edad"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, got["fecha_registro"])
}

func TestDuplicateStudentRUTReRendersForm(t *testing.T) {
	p := newPortal(t)
	p.seedAccount(t, "admin", "00.000.000-0", models.RoleAdmin)
	p.seedStudent(t, "12.345.678-5")

	c := p.client(t)
	c.login("admin")

	w := c.postMultipart("/alumnos/crear", studentFields("12.345.678-5"), "", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Ya existe un alumno con este RUT")
	assert.Contains(t, w.Body.String(), `value="Diego"`)
	assert.Equal(t, 1, p.students.Len())
}

func TestInvalidStudentFormIsRejected(t *testing.T) {
	p := newPortal(t)
	p.seedAccount(t, "admin", "00.000.000-0", models.RoleAdmin)

	c := p.client(t)
	c.login("admin")

	fields := studentFields("12.345.678-5")
	fields["nivel"] = "7"
	w := c.postMultipart("/alumnos/crear", fields, "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, p.students.Len())
}

func TestStudentFormRequiresDottedRUT(t *testing.T) {
	p := newPortal(t)
	p.seedAccount(t, "admin", "00.000.000-0", models.RoleAdmin)

	c := p.client(t)
	c.login("admin")

	for _, rut := range []string{"12345678-9", "1.234.56-7", "12.345.678"} {
		w := c.postMultipart("/alumnos/crear", studentFields(rut), "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, rut)
	}
	assert.Equal(t, 0, p.students.Len())
}

func TestStudentCreatedByAdminCanRegister(t *testing.T) {
	p := newPortal(t)
	p.seedAccount(t, "admin", "00.000.000-0", models.RoleAdmin)

	admin := p.client(t)
	admin.login("admin")
	w := admin.postMultipart("/alumnos/crear", studentFields("9.876.543-K"), "", nil)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())

	w = p.client(t).postForm("/registro", url.Values{
		"rut":              {"9.876.543-K"},
		"username":         {"diego"},
		"email":            {"diego@example.com"},
		"password":         {"secreta1"},
		"confirm_password": {"secreta1"},
	})
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())

	account, err := p.accounts.GetByUsername(context.Background(), "diego")
	require.NoError(t, err)
	assert.Equal(t, "9.876.543-K", account.RUT)
	assert.Equal(t, models.RoleViewer, account.Role)
}

func TestAdminEditsStudent(t *testing.T) {
	p := newPortal(t)
	p.seedAccount(t, "admin", "00.000.000-0", models.RoleAdmin)
	first := p.seedStudent(t, "11.111.111-1")
	second := p.seedStudent(t, "22.222.222-2")

	c := p.client(t)
	c.login("admin")

	fields := studentFields("33.333.333-3")
	fields["cinturon"] = "Morado"
	w := c.postMultipart(fmt.Sprintf("/alumnos/editar/%d", second.ID), fields, "", nil)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, fmt.Sprintf("/alumnos/%d", second.ID), w.Header().Get("Location"))

	page := c.get(w.Header().Get("Location"))
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Alumno actualizado exitosamente")

	stored, err := p.students.GetByID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, "33.333.333-3", stored.RUT)
	assert.Equal(t, "Morado", stored.Belt)

	w = c.postMultipart(fmt.Sprintf("/alumnos/editar/%d", second.ID), studentFields(first.RUT), "", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Ya existe otro alumno con este RUT")
	assert.Contains(t, w.Body.String(), `value="Diego"`)

	stored, err = p.students.GetByID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, "33.333.333-3", stored.RUT)
}

func TestViewerCannotReachAdminRoutes(t *testing.T) {
	p := newPortal(t)
	p.seedAccount(t, "ana", "11.111.111-1", models.RoleViewer)
	other := p.seedAccount(t, "beto", "22.222.222-2", models.RoleViewer)
	p.seedStudent(t, "12.345.678-5")

	c := p.client(t)
	c.login("ana")

	requests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/alumnos/crear"},
		{http.MethodPost, "/alumnos/crear"},
		{http.MethodGet, "/alumnos/editar/1"},
		{http.MethodPost, "/alumnos/editar/1"},
		{http.MethodPost, "/alumnos/eliminar/1"},
		{http.MethodGet, "/alumnos/exportar"},
		{http.MethodGet, "/usuarios"},
		{http.MethodGet, "/usuarios/crear"},
		{http.MethodPost, "/usuarios/crear"},
		{http.MethodPost, "/usuarios/eliminar/" + "2"},
	}
	for _, r := range requests {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			var w *httptest.ResponseRecorder
			if r.method == http.MethodGet {
				w = c.get(r.path)
			} else {
				w = c.postMultipart(r.path, studentFields("99.999.999-9"), "", nil)
			}
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "/", w.Header().Get("Location"))
		})
	}

	assert.Equal(t, 1, p.students.Len())
	_, err := p.accounts.GetByID(context.Background(), other.ID)
	assert.NoError(t, err)

	// The viewer still reads the roster
	w := c.get("/alumnos/1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Acceso denegado")
}

func TestAnonymousCallers(t *testing.T) {
	p := newPortal(t)
	c := p.client(t)

	w := c.get("/alumnos")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Falumnos", w.Header().Get("Location"))

	w = c.postForm("/alumnos/eliminar/1", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/login?next="))

	w = c.get("/api/alumnos")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestLoginHonoursLocalNextOnly(t *testing.T) {
	p := newPortal(t)
	p.seedAccount(t, "ana", "11.111.111-1", models.RoleViewer)

	c := p.client(t)
	w := c.postForm("/login?next=/alumnos", url.Values{"username": {"ana"}, "password": {"clave123"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/alumnos", w.Header().Get("Location"))

	c = p.client(t)
	w = c.postForm("/login", url.Values{"username": {"ana"}, "password": {"clave123"}, "next": {"//evil.example"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	// Already authenticated callers are sent home
	w = c.get("/login")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestLoginFailureUsesOneNotice(t *testing.T) {
	p := newPortal(t)
	p.seedAccount(t, "ana", "11.111.111-1", models.RoleViewer)
	inactive := p.seedAccount(t, "beto", "22.222.222-2", models.RoleViewer)
	p.accounts.SetActive(inactive.ID, false)

	for _, creds := range []url.Values{
		{"username": {"ana"}, "password": {"incorrecta"}},
		{"username": {"nadie"}, "password": {"clave123"}},
		{"username": {"beto"}, "password": {"clave123"}},
	} {
		w := p.client(t).postForm("/login", creds)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Usuario o contraseña incorrectos.")
	}
}

func TestRegistrationRequiresRosterRUT(t *testing.T) {
	p := newPortal(t)
	c := p.client(t)

	form := url.Values{
		"rut":              {"12.345.678-5"},
		"username":         {"camila"},
		"email":            {"camila@example.com"},
		"password":         {"secreta1"},
		"confirm_password": {"secreta1"},
	}

	w := c.postForm("/registro", form)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no corresponde a ningún alumno registrado")

	p.seedStudent(t, "12.345.678-5")
	w = c.postForm("/registro", form)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, "/", w.Header().Get("Location"))

	home := c.get("/")
	assert.Contains(t, home.Body.String(), "Registro exitoso. Bienvenido, camila!")

	account, err := p.accounts.GetByUsername(context.Background(), "camila")
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, account.Role)
}

func TestAdminCannotDeleteItself(t *testing.T) {
	p := newPortal(t)
	admin := p.seedAccount(t, "admin", "00.000.000-0", models.RoleAdmin)
	other := p.seedAccount(t, "ana", "11.111.111-1", models.RoleViewer)

	c := p.client(t)
	c.login("admin")

	w := c.postForm("/usuarios/eliminar/1", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/usuarios", w.Header().Get("Location"))

	list := c.get("/usuarios")
	assert.Contains(t, list.Body.String(), "No puedes eliminar tu propia cuenta.")
	_, err := p.accounts.GetByID(context.Background(), admin.ID)
	assert.NoError(t, err)

	w = c.postForm("/usuarios/eliminar/2", nil)
	require.Equal(t, http.StatusFound, w.Code)
	list = c.get("/usuarios")
	assert.Contains(t, list.Body.String(), "Usuario ana eliminado exitosamente.")
	_, err = p.accounts.GetByID(context.Background(), other.ID)
	assert.Error(t, err)
}

func TestDeleteStudentRemovesPhoto(t *testing.T) {
	p := newPortal(t)
	p.seedAccount(t, "admin", "00.000.000-0", models.RoleAdmin)

	c := p.client(t)
	c.login("admin")

	w := c.postMultipart("/alumnos/crear", studentFields("12.345.678-5"), "foto.png", testutil.PNG(t, 4, 4))
	require.Equal(t, http.StatusFound, w.Code)

	w = c.postForm("/alumnos/eliminar/1", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, 0, p.students.Len())

	_, deleted := p.pictures.Calls()
	assert.Equal(t, []string{"foto1.png"}, deleted)
}

func TestExportDownloadsWorkbook(t *testing.T) {
	p := newPortal(t)
	p.seedAccount(t, "admin", "00.000.000-0", models.RoleAdmin)
	p.seedStudent(t, "12.345.678-5")

	c := p.client(t)
	c.login("admin")

	w := c.get("/alumnos/exportar")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "alumnos_")
	assert.True(t, strings.HasPrefix(w.Body.String(), "PK"))
}

func TestHealthAndNotFound(t *testing.T) {
	p := newPortal(t)
	c := p.client(t)

	w := c.get("/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"up"`)

	w = c.get("/no-existe")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = c.get("/api/no-existe")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}
