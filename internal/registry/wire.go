package registry

import "github.com/sells-group/provider-verify/internal/model"

const (
	statusSuccess = "success"
	statusError   = "error"
)

// lookupResponse is the body of GET /lookup/{id}.
type lookupResponse struct {
	Status  string      `json:"status"`
	Data    *wireRecord `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type wireRecord struct {
	Name    string `json:"name" yaml:"name"`
	Phone   string `json:"phone" yaml:"phone"`
	Address string `json:"address" yaml:"address"`
	License string `json:"license" yaml:"license"`
}

func (w wireRecord) toModel(npi string) model.ProviderRecord {
	return model.ProviderRecord{
		Name:    w.Name,
		Phone:   w.Phone,
		Address: w.Address,
		License: w.License,
		NPI:     npi,
	}
}

func fromModel(rec model.ProviderRecord) *wireRecord {
	return &wireRecord{
		Name:    rec.Name,
		Phone:   rec.Phone,
		Address: rec.Address,
		License: rec.License,
	}
}
