// Package web renders the HTML pages of the application.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/Tomlord1122/todo-web/internal/service"
	"github.com/Tomlord1122/todo-web/internal/session"
)

// Page names.
const (
	Home     = "home.html"
	AddTodo  = "add-todo.html"
	EditTodo = "edit-todo.html"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// FormValues are the raw todo form fields, kept as typed so a rejected form
// can be shown again unchanged.
type FormValues struct {
	Title       string
	Description string
	Priority    string
}

// FormFromTodo prefills a form with a stored todo.
func FormFromTodo(todo *service.TodoResponse) FormValues {
	return FormValues{
		Title:       todo.Title,
		Description: todo.Description,
		Priority:    strconv.Itoa(todo.Priority),
	}
}

// Page is the data handed to every template.
type Page struct {
	Title  string
	User   session.Identity
	Todos  []service.TodoResponse
	TodoID uint
	Form   FormValues
	Errors map[string]string
}

type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page together with the shared layout.
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{Home, AddTodo, EditTodo} {
		t, err := template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Execute writes page name to w.
func (r *Renderer) Execute(w io.Writer, name string, page Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", page)
}

// Render buffers the page so a template error never leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) error {
	var buf bytes.Buffer
	if err := r.Execute(&buf, name, page); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Static serves the embedded stylesheet and other assets.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
