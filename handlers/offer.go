package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmate/models"
	"taskmate/services/offer"
	"taskmate/utils"
)

type OfferHandler struct {
	Service offer.OfferService
}

func NewOfferHandler(service offer.OfferService) *OfferHandler {
	return &OfferHandler{Service: service}
}

func (h *OfferHandler) SubmitOfferHandler(c *gin.Context) {
	var o models.Offer
	if err := c.ShouldBindJSON(&o); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid offer", err.Error())
		return
	}
	o.TaskID = c.Param("id")
	created, err := h.Service.SubmitOffer(c.Request.Context(), o)
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "Failed to submit offer", err.Error())
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *OfferHandler) AcceptOfferHandler(c *gin.Context) {
	if err := h.Service.AcceptOffer(c.Request.Context(), c.Param("id"), c.Param("offerId")); err != nil {
		utils.JSONError(c, http.StatusBadGateway, "Failed to accept offer", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

func (h *OfferHandler) ListOffersHandler(c *gin.Context) {
	offers, err := h.Service.ListOffers(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "Failed to list offers", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}
