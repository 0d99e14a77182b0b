package handler

import (
	"strings"

	dErrors "veristaff/pkg/domain-errors"
)

// CreateOrgRequest is the HTTP request body for POST /api/organizations.
type CreateOrgRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateOrgRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	r.Slug = strings.TrimSpace(r.Slug)
	if r.Slug == "" {
		return dErrors.New(dErrors.CodeValidation, "slug is required")
	}
	return nil
}

// AddDomainRequest is the HTTP request body for POST /api/organizations/{orgID}/domains.
type AddDomainRequest struct {
	Domain string `json:"domain"`
}

// Validate validates the request.
func (r *AddDomainRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Domain = strings.TrimSpace(r.Domain)
	if r.Domain == "" {
		return dErrors.New(dErrors.CodeValidation, "domain is required")
	}
	return nil
}
