package server

import (
	"agro_desk/internal/domain/entity"
	"agro_desk/pkg/rest"
)

func newDomainApplication(data rest.WebAppData) entity.Application {
	chatID := data.ChatID
	if chatID == 0 {
		chatID = data.UserID
	}

	return entity.Application{
		ApplicantID: data.UserID,
		ChatID:      chatID,
		Name:        data.Name,

		Group:       data.Group,
		Culture:     data.Culture,
		Quantity:    data.Quantity,
		PaymentForm: data.PaymentForm,
		Currency:    data.Currency,
		Price:       data.Price,

		Region:   data.Region,
		District: data.District,
		City:     data.City,
	}
}

func newRESTApplication(app entity.Application) rest.Application {
	return rest.Application{
		ID:          app.ID,
		ApplicantID: app.ApplicantID,
		Index:       app.Index,
		Name:        app.Name,

		Group:       app.Group,
		Culture:     app.Culture,
		Quantity:    app.Quantity,
		PaymentForm: app.PaymentForm,
		Currency:    app.Currency,
		Price:       app.Price,

		Region:   app.Region,
		District: app.District,
		City:     app.City,

		Proposal:       app.Proposal,
		ProposalStatus: app.ProposalStatus.String(),
		SheetRow:       app.SheetRow,
	}
}
