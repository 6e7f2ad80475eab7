package transport

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"mcgenerator/internal/domain/entity"
)

const generateField = "generate"

var validate = validator.New()

// A hostname becomes one path segment under the nmstate directory and a bare
// YAML scalar, so it is limited to characters safe in both.
var filenameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

func init() {
	validate.RegisterValidation("nmstate_filename", func(fl validator.FieldLevel) bool {
		return filenameRegex.MatchString(fl.Field().String())
	})
}

func hostnameKey(role entity.Role, i int) string {
	return fmt.Sprintf("%s_hostname_%d", role, i)
}

func configKey(role entity.Role, i int) string {
	return fmt.Sprintf("%s_config_%d", role, i)
}

// nonEmpty drops unset fields so that absence and "" mean the same thing.
func nonEmpty(form url.Values) url.Values {
	params := make(url.Values, len(form))
	for k, vs := range form {
		for _, v := range vs {
			if v != "" {
				params[k] = []string{v}
				break
			}
		}
	}
	return params
}

func parseCount(role entity.Role, raw string, maxHosts int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 || (maxHosts > 0 && n > maxHosts) {
		return 0, &entity.InvalidCountError{Role: role, Value: raw, Limit: maxHosts}
	}
	return n, nil
}

// DecodeGenerationRequest builds the strict generator input from form params.
// Every host referenced by a count must carry both a hostname and a config.
func DecodeGenerationRequest(params url.Values, maxHosts int) (entity.GenerationRequest, error) {
	req := entity.NewGenerationRequest()

	for i := range req.Roles {
		spec := &req.Roles[i]

		raw := params.Get(spec.Role.CountKey())
		if raw == "" {
			return entity.GenerationRequest{}, &entity.MissingFieldError{Role: spec.Role, Index: -1, Key: spec.Role.CountKey()}
		}
		count, err := parseCount(spec.Role, raw, maxHosts)
		if err != nil {
			return entity.GenerationRequest{}, err
		}

		spec.Hosts = make([]entity.HostConfig, 0, count)
		for idx := 0; idx < count; idx++ {
			host := entity.HostConfig{
				Hostname: strings.TrimSpace(params.Get(hostnameKey(spec.Role, idx))),
				Config:   params.Get(configKey(spec.Role, idx)),
			}
			if host.Hostname == "" {
				return entity.GenerationRequest{}, &entity.MissingFieldError{Role: spec.Role, Index: idx, Key: "hostname"}
			}
			if host.Config == "" {
				return entity.GenerationRequest{}, &entity.MissingFieldError{Role: spec.Role, Index: idx, Key: "config"}
			}
			if err := validate.Struct(host); err != nil {
				return entity.GenerationRequest{}, &entity.InvalidFieldError{
					Role:   spec.Role,
					Index:  idx,
					Key:    "hostname",
					Value:  host.Hostname,
					Reason: "must start with a letter or digit and contain only letters, digits, '.', '_' or '-'",
				}
			}
			spec.Hosts = append(spec.Hosts, host)
		}
	}

	return req, nil
}

// DecodeFormView builds the page model used to (re)display the form. Counts
// that are not supplied fall back to defaultCount. A bad count is reported on
// the view instead of failing.
func DecodeFormView(params url.Values, defaultCount, maxHosts int) entity.FormView {
	var view entity.FormView

	for _, role := range entity.Roles {
		rf := entity.RoleForm{Role: role, Count: params.Get(role.CountKey())}
		if rf.Count == "" {
			rf.Count = strconv.Itoa(defaultCount)
		}

		count, err := parseCount(role, rf.Count, maxHosts)
		if err != nil {
			if view.Error == "" {
				view.Error = err.Error()
			}
			view.Roles = append(view.Roles, rf)
			continue
		}

		for idx := 0; idx < count; idx++ {
			rf.Hosts = append(rf.Hosts, entity.HostField{
				Index:    idx,
				Hostname: params.Get(hostnameKey(role, idx)),
				Config:   params.Get(configKey(role, idx)),
			})
		}
		view.Roles = append(view.Roles, rf)
	}

	return view
}
