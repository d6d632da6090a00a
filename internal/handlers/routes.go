package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pliu/messenger/internal/middleware"
)

type Router struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Chats         *ChatHandler
	Channels      *ChannelHandler
	SavedMessages *SavedMessageHandler

	// Authenticate guards every route that is not public.
	Authenticate func(http.Handler) http.Handler
}

// Handler builds the /api routes. Listing channels and chats, registering,
// logging in and the password reset flow are public.
func (rt *Router) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)

	api := r.PathPrefix("/api").Subrouter()

	// Public
	api.HandleFunc("/register", rt.Auth.Register).Methods("POST")
	api.HandleFunc("/login", rt.Auth.Login).Methods("POST")
	api.HandleFunc("/send_email", rt.Auth.SendResetCode).Methods("GET")
	api.HandleFunc("/reset_password", rt.Auth.ResetPassword).Methods("POST")
	api.HandleFunc("/channels", rt.Channels.List).Methods("GET")
	api.HandleFunc("/chats", rt.Chats.Directory).Methods("GET")

	private := api.NewRoute().Subrouter()
	private.Use(rt.Authenticate)

	private.HandleFunc("/users", rt.Users.List).Methods("GET")
	private.HandleFunc("/users/email", rt.Users.IDByEmail).Methods("GET")
	private.HandleFunc("/users/{id:[0-9]+}", rt.Users.Profile).Methods("GET")
	private.HandleFunc("/users/{id:[0-9]+}/update/image", rt.Users.UpdateImage).Methods("PUT")
	private.HandleFunc("/users/{id:[0-9]+}/update/email", rt.Users.UpdateEmail).Methods("PUT")
	private.HandleFunc("/users/{id:[0-9]+}/update/name", rt.Users.UpdateName).Methods("PUT")
	private.HandleFunc("/users/{id:[0-9]+}/update/password", rt.Users.UpdatePassword).Methods("PUT")
	private.HandleFunc("/users/{id:[0-9]+}/delete_image", rt.Users.DeleteImage).Methods("DELETE")
	private.HandleFunc("/users/{id:[0-9]+}/delete", rt.Users.Delete).Methods("DELETE")

	private.HandleFunc("/chats/add_message", rt.Chats.AddMessage).Methods("POST")
	private.HandleFunc("/chats/usernames", rt.Chats.MessagesByUsernames).Methods("GET")
	private.HandleFunc("/chats/delete/{id:[0-9]+}", rt.Chats.Delete).Methods("DELETE")
	private.HandleFunc("/chats/{id:[0-9]+}", rt.Chats.Messages).Methods("GET")

	private.HandleFunc("/channels/create", rt.Channels.Create).Methods("POST")
	private.HandleFunc("/channels/add_message", rt.Channels.AddMessage).Methods("POST")
	private.HandleFunc("/channels/join", rt.Channels.Join).Methods("POST")
	private.HandleFunc("/channels/delete/{id:[0-9]+}", rt.Channels.Delete).Methods("DELETE")
	private.HandleFunc("/channels/{id:[0-9]+}/leave", rt.Channels.Leave).Methods("DELETE")
	private.HandleFunc("/channels/{id:[0-9]+}/update", rt.Channels.Rename).Methods("PUT")
	private.HandleFunc("/channels/{id:[0-9]+}", rt.Channels.Get).Methods("GET")

	private.HandleFunc("/roles/create", rt.Channels.CreateRole).Methods("POST")

	private.HandleFunc("/saved_message/save", rt.SavedMessages.Save).Methods("POST")
	private.HandleFunc("/saved_message/delete", rt.SavedMessages.Delete).Methods("DELETE")
	private.HandleFunc("/saved_message/delete_all", rt.SavedMessages.DeleteAll).Methods("DELETE")

	return r
}
