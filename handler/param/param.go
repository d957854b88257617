package param

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/schema"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
	decoder.SetAliasTag("json")
}

// Binding binds query values or the json body into v depending on the
// request method
func Binding(r *http.Request, v interface{}) error {
	switch r.Method {
	case http.MethodGet, http.MethodDelete, http.MethodHead:
		if err := r.ParseForm(); err != nil {
			return err
		}

		return decoder.Decode(v, r.Form)
	default:
		defer r.Body.Close()
		return json.NewDecoder(r.Body).Decode(v)
	}
}
