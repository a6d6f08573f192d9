package polidi

import (
	"net/http"

	json "github.com/goccy/go-json"
)

type (
	// Status describes what a [Container] can resolve and has resolved.
	Status struct {
		Registrations []Registration `json:"registrations"`
		Singletons    int            `json:"singletons"`
		Frozen        bool           `json:"frozen"`
	}

	// Registration is the JSON form of an [Entry].
	Registration struct {
		Contract       Contract `json:"contract"`
		Param          string   `json:"param,omitempty"`
		Implementation string   `json:"implementation,omitempty"`
		Lifetime       Lifetime `json:"lifetime"`
	}
)

// Status reports the container's registrations and how many singletons it
// holds.
func (c *Container) Status() Status {
	entries := c.reg.Entries()

	st := Status{
		Registrations: make([]Registration, 0, len(entries)),
		Singletons:    c.singletons.len(),
		Frozen:        c.reg.Frozen(),
	}

	for _, e := range entries {
		reg := Registration{Contract: e.Contract, Lifetime: e.Lifetime}
		if e.Param != nil {
			reg.Param = e.Param.String()
		}

		if e.Impl != nil {
			reg.Implementation = e.Impl.String()
		}

		st.Registrations = append(st.Registrations, reg)
	}

	return st
}

// Handler returns an [http.Handler] serving c's [Status] as JSON.
func Handler(c *Container) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusOK)

		//nolint:errcheck // best-effort JSON encoding to HTTP response
		_ = json.NewEncoder(writer).Encode(c.Status())
	})
}
