package web

import (
	"net/http"

	"gymportal/internal/adapters/http/middleware"
	"gymportal/internal/application/orchestrators"
	"gymportal/internal/domain/account"
	"gymportal/internal/domain/branch"
)

// fitnessGoals are the choices offered on the registration form.
var fitnessGoals = []struct{ Value, Label string }{
	{"weight_loss", "Weight loss"},
	{"muscle_gain", "Muscle gain"},
	{"endurance", "Endurance"},
	{"general_fitness", "General fitness"},
}

type registerPage struct {
	Branches []branch.Branch
	Goals    []struct{ Value, Label string }
}

// handleRegisterForm serves GET /register.
func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	if sess, _ := middleware.GetSessionFromContext(r.Context()); sess.IsAuthenticated() && sess.Kind == account.KindCustomer {
		redirect(w, r, "/dashboard")
		return
	}
	branches, err := s.Stores.Branches.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	s.render(w, r, "register.html", "Join", registerPage{Branches: branches, Goals: fitnessGoals})
}

// handleRegister creates the customer and logs them straight in.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.RegisterInput{
		FirstName:       r.PostFormValue("first_name"),
		LastName:        r.PostFormValue("last_name"),
		Email:           r.PostFormValue("email"),
		Phone:           r.PostFormValue("phone"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
		Branch:          r.PostFormValue("branch"),
		FitnessGoal:     r.PostFormValue("fitness_goal"),
	}
	deps := orchestrators.RegisterDeps{
		Customers:  s.Stores.Customers,
		Branches:   s.Stores.Branches,
		Recorder:   s.recorder,
		Now:        s.Now,
		GenerateID: s.GenerateID,
	}

	result, err := orchestrators.ExecuteRegisterCustomer(r.Context(), input, deps)
	if err != nil {
		if !s.flashError(w, r, err) {
			internalError(w, err)
			return
		}
		redirect(w, r, "/register")
		return
	}

	sess, err := s.startSession(w, r, orchestrators.LoginResult{
		AccountID: result.AccountID,
		Kind:      account.KindCustomer,
		Name:      result.Name,
		Email:     result.Email,
		Role:      account.RoleCustomer,
		Branch:    result.Branch,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	s.Sessions.AddFlash(sess.Token, middleware.Flash{Level: middleware.FlashSuccess, Message: "Welcome to " + result.Branch + ", " + result.Name + "!"})
	redirect(w, r, "/dashboard")
}
