package server

import (
	"net/http"
	"strings"

	"agro_desk/internal/domain"
	"agro_desk/internal/domain/service/proposal"
	"agro_desk/pkg/errcodes"
	"agro_desk/pkg/httpx/reply"
	"agro_desk/pkg/httpx/req"
	"agro_desk/pkg/rest"
)

// IntakeServer приём заявок из веб-формы.
type IntakeServer struct {
	svc *proposal.Service
}

func NewIntakeServer(svc *proposal.Service) IntakeServer {
	return IntakeServer{svc: svc}
}

func (s IntakeServer) postV1WebAppData(w http.ResponseWriter, r *http.Request) error {
	var data rest.WebAppData
	if err := req.Read(r, &data); err != nil {
		return err
	}

	if isEmptyPayload(data) {
		return domain.NewError(errcodes.ValidationError, "empty application payload")
	}

	app := newDomainApplication(data)

	if !data.Submit {
		reply.JSON(r.Context(), w, http.StatusOK, rest.WebAppResult{
			Status:      "preview",
			Application: newRESTApplication(app),
		})
		return nil
	}

	if err := s.svc.SubmitApplication(r.Context(), &app); err != nil {
		return err
	}

	reply.JSON(r.Context(), w, http.StatusCreated, rest.WebAppResult{
		Status:      "created",
		Application: newRESTApplication(app),
	})

	return nil
}

func isEmptyPayload(data rest.WebAppData) bool {
	fields := []string{
		data.Group, data.Culture, data.Quantity, data.PaymentForm,
		data.Currency, data.Price, data.Region, data.District, data.City,
	}

	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}

	return true
}
