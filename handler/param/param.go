package param

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi"
	"github.com/gorilla/schema"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.SetAliasTag("json")
	d.IgnoreUnknownKeys(true)
	return d
}

// Binding bind query values or a json body into v, then validate the `valid` tags
func Binding(r *http.Request, v interface{}) error {
	if r.Method == http.MethodGet || r.Method == http.MethodDelete {
		if err := decoder.Decode(v, r.URL.Query()); err != nil {
			return err
		}
	} else if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(v); err != nil {
			return err
		}
	}

	_, err := govalidator.ValidateStruct(v)
	return err
}

// String url param, falls back to the query value
func String(r *http.Request, key string) string {
	if v := chi.URLParam(r, key); v != "" {
		return v
	}

	return strings.TrimSpace(r.URL.Query().Get(key))
}
