package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/tripcart/lib/mycontext"
	"github.com/MarcGrol/tripcart/lib/myerrors"
	"github.com/MarcGrol/tripcart/lib/myhttp"
	"github.com/MarcGrol/tripcart/lib/mylog"
	"github.com/MarcGrol/tripcart/lib/mypublisher"
	"github.com/MarcGrol/tripcart/lib/mypubsub"
	"github.com/MarcGrol/tripcart/lib/myuuid"
	"github.com/MarcGrol/tripcart/services/cart/cartcodec"
	"github.com/MarcGrol/tripcart/services/cart/cartmodel"
	"github.com/MarcGrol/tripcart/services/checkoutevents"
)

const maxBodySize = 1 << 20

type webService struct {
	service *service
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(sessions *Sessions, uuider myuuid.UUIDer, publisher mypublisher.Publisher, pubsub mypubsub.PubSub, logger mylog.Logger) *webService {
	return &webService{
		service: newService(sessions, uuider, publisher, pubsub, logger),
		logger:  logger,
	}
}

func (s *webService) Subscribe(c context.Context) error {
	return s.service.Subscribe(c)
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/cart", s.createSession()).Methods("POST")

	// Pubsub pushes checkout events to this endpoint
	router.HandleFunc("/api/cart/event", s.handleEvent()).Methods("PUT")

	router.HandleFunc("/api/cart/{sessionUID}", s.getCart()).Methods("GET")
	router.HandleFunc("/api/cart/{sessionUID}", s.clearCart()).Methods("DELETE")
	router.HandleFunc("/api/cart/{sessionUID}/summary", s.getSummary()).Methods("GET")
	router.HandleFunc("/api/cart/{sessionUID}/items", s.addItem()).Methods("POST")
	router.HandleFunc("/api/cart/{sessionUID}/items/{itemID}", s.isInCart()).Methods("GET")
	router.HandleFunc("/api/cart/{sessionUID}/items/{itemID}", s.updateItem()).Methods("PATCH")
	router.HandleFunc("/api/cart/{sessionUID}/items/{itemID}", s.removeItem()).Methods("DELETE")
	router.HandleFunc("/api/cart/{sessionUID}/items/{itemID}/quantity", s.updateQuantity()).Methods("PUT")
	router.HandleFunc("/api/cart/{sessionUID}/discount", s.applyDiscount()).Methods("PUT")
	router.HandleFunc("/api/cart/{sessionUID}/discount", s.removeDiscount()).Methods("DELETE")
}

type sessionCreated struct {
	SessionUID string `json:"sessionUID"`
}

type inCartResponse struct {
	InCart bool `json:"inCart"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

type discountRequest struct {
	Code   string   `json:"code"`
	Amount *float64 `json:"amount"`
}

func (s *webService) createSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		sessionUID := s.service.createSession(c)

		w.Header().Set("Location", fmt.Sprintf("%s/api/cart/%s", myhttp.HostnameWithScheme(r), sessionUID))
		responseWriter.Write(c, w, http.StatusCreated, sessionCreated{SessionUID: sessionUID})
	}
}

func (s *webService) getCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		state, err := s.service.getCart(c, mux.Vars(r)["sessionUID"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, state)
	}
}

func (s *webService) getSummary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		summary, err := s.service.getSummary(c, mux.Vars(r)["sessionUID"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, summary)
	}
}

func (s *webService) isInCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		vars := mux.Vars(r)
		inCart, err := s.service.isInCart(c, vars["sessionUID"], vars["itemID"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, inCartResponse{InCart: inCart})
	}
}

func (s *webService) addItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		item, err := decodeItem(r)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		state, err := s.service.dispatch(c, mux.Vars(r)["sessionUID"], AddItem{Item: item})
		if err != nil {
			responseWriter.WriteError(c, w, 3, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, state)
	}
}

func (s *webService) updateItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		body, err := readJSONBody(r)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}
		patch, err := cartcodec.DecodePatchJSON(body)
		if err != nil {
			responseWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(err))
			return
		}

		vars := mux.Vars(r)
		state, err := s.service.dispatch(c, vars["sessionUID"], UpdateItem{
			ID:    vars["itemID"],
			Type:  r.URL.Query().Get("type"),
			Patch: patch,
		})
		if err != nil {
			responseWriter.WriteError(c, w, 3, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, state)
	}
}

func (s *webService) updateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		req := quantityRequest{}
		err := decodeJSONBody(r, &req)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}
		if req.Quantity == nil {
			responseWriter.WriteError(c, w, 2, myerrors.NewInvalidInputErrorf("missing quantity"))
			return
		}

		vars := mux.Vars(r)
		state, err := s.service.dispatch(c, vars["sessionUID"], UpdateQuantity{
			ID:       vars["itemID"],
			Type:     r.URL.Query().Get("type"),
			Quantity: *req.Quantity,
		})
		if err != nil {
			responseWriter.WriteError(c, w, 3, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, state)
	}
}

func (s *webService) removeItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		vars := mux.Vars(r)
		state, err := s.service.dispatch(c, vars["sessionUID"], RemoveItem{
			ID:   vars["itemID"],
			Type: r.URL.Query().Get("type"),
		})
		if err != nil {
			responseWriter.WriteError(c, w, 3, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, state)
	}
}

func (s *webService) clearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		state, err := s.service.dispatch(c, mux.Vars(r)["sessionUID"], ClearCart{})
		if err != nil {
			responseWriter.WriteError(c, w, 3, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, state)
	}
}

func (s *webService) applyDiscount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		req := discountRequest{}
		err := decodeJSONBody(r, &req)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}
		if req.Code == "" || req.Amount == nil {
			responseWriter.WriteError(c, w, 2, myerrors.NewInvalidInputErrorf("discount needs a code and an amount"))
			return
		}

		state, err := s.service.dispatch(c, mux.Vars(r)["sessionUID"], ApplyDiscount{Code: req.Code, Amount: *req.Amount})
		if err != nil {
			responseWriter.WriteError(c, w, 3, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, state)
	}
}

func (s *webService) removeDiscount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		state, err := s.service.dispatch(c, mux.Vars(r)["sessionUID"], RemoveDiscount{})
		if err != nil {
			responseWriter.WriteError(c, w, 3, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, state)
	}
}

func (s *webService) handleEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		err := checkoutevents.DispatchEvent(c, http.MaxBytesReader(w, r.Body, maxBodySize), s.service)
		if err != nil {
			responseWriter.WriteError(c, w, 4, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.EmptyResponse{})
	}
}

func mediaType(r *http.Request) string {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return "application/json"
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mediaType
}

// decodeItem accepts a json object or html form values
func decodeItem(r *http.Request) (cartmodel.CartItem, error) {
	switch mediaType(r) {
	case "application/json":
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			return cartmodel.CartItem{}, myerrors.NewInvalidInputError(err)
		}
		item, err := cartcodec.DecodeJSON(body)
		if err != nil {
			return cartmodel.CartItem{}, myerrors.NewInvalidInputError(err)
		}
		return item, nil
	case "application/x-www-form-urlencoded", "multipart/form-data":
		err := r.ParseMultipartForm(maxBodySize)
		if err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return cartmodel.CartItem{}, myerrors.NewInvalidInputError(err)
		}
		item, err := cartcodec.DecodeForm(r.PostForm)
		if err != nil {
			return cartmodel.CartItem{}, myerrors.NewInvalidInputError(err)
		}
		return item, nil
	default:
		return cartmodel.CartItem{}, myerrors.NewUnsupportedMediaTypeError(fmt.Errorf("unsupported content-type '%s'", r.Header.Get("Content-Type")))
	}
}

func readJSONBody(r *http.Request) ([]byte, error) {
	if mediaType(r) != "application/json" {
		return nil, myerrors.NewUnsupportedMediaTypeError(fmt.Errorf("unsupported content-type '%s'", r.Header.Get("Content-Type")))
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, myerrors.NewInvalidInputError(err)
	}
	return body, nil
}

func decodeJSONBody(r *http.Request, target any) error {
	body, err := readJSONBody(r)
	if err != nil {
		return err
	}
	err = json.Unmarshal(body, target)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}
	return nil
}
