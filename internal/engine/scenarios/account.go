package scenarios

import (
	"context"
	"errors"
	"os"

	"shopharness/internal/engine"
	"shopharness/internal/pages"
)

func init() {
	engine.Register("Account001", Account001)
	engine.Register("Login001", Login001)
	engine.Register("Login002", Login002)
}

// customerCredentials reads the pooled test customer from the environment.
func customerCredentials() (email, password string, ok bool) {
	email = os.Getenv("SHOP_CUSTOMER_EMAIL")
	password = os.Getenv("SHOP_CUSTOMER_PASSWORD")
	return email, password, email != "" && password != ""
}

// Login001 logs in with valid pooled credentials and verifies the account
// dashboard greets the customer.
func Login001(ctx context.Context, env *engine.Env) error {
	email, password, ok := customerCredentials()
	if !ok {
		return scenarioError("load credentials",
			errors.New("SHOP_CUSTOMER_EMAIL and SHOP_CUSTOMER_PASSWORD are not set"))
	}

	account := newAccountPage(env)
	if err := account.Login(email, password); err != nil {
		var pageErr *pages.PageError
		if errors.As(err, &pageErr) && pageErr.Kind == pages.FailureUnexpectedURL {
			return engine.Failf(1, "login succeeds and leaves the login page", "%s", pageErr.Detail)
		}
		return err
	}
	env.StepLog.Record(1, "login "+email, "ok", "")

	greeting, err := account.Greeting()
	if err != nil {
		return err
	}
	if greeting == "" {
		return engine.Failf(2, "dashboard shows a greeting", "greeting element is empty")
	}
	env.StepLog.Record(2, "read greeting", "ok", greeting)
	return nil
}

// Login002 verifies that wrong credentials keep the user on the login page
// with an error message.
func Login002(ctx context.Context, env *engine.Env) error {
	account := newAccountPage(env)
	err := account.Login("nobody@example.invalid", "definitely-wrong")
	if err == nil {
		return engine.Failf(1, "login with wrong credentials is rejected", "login succeeded")
	}
	var pageErr *pages.PageError
	if errors.As(err, &pageErr) && pageErr.Kind == pages.FailureUnexpectedURL {
		env.StepLog.Record(1, "reject wrong credentials", "ok", pageErr.Detail)
		return nil
	}
	return err
}

// Account001 adds an address book entry to a logged-in account and removes
// it again.
func Account001(ctx context.Context, env *engine.Env) error {
	email, password, ok := customerCredentials()
	if !ok {
		return scenarioError("load credentials",
			errors.New("SHOP_CUSTOMER_EMAIL and SHOP_CUSTOMER_PASSWORD are not set"))
	}

	account := newAccountPage(env)
	if err := account.Login(email, password); err != nil {
		return err
	}
	env.StepLog.Record(1, "login", "ok", "")

	addr := defaultAddress(env.Contract)
	if err := account.AddAddress(addr); err != nil {
		return err
	}
	env.StepLog.Record(2, "add address", "ok", addr.City)

	if err := account.DeleteAddress(1); err != nil {
		return err
	}
	env.StepLog.Record(3, "delete address", "ok", "")
	return account.Logout()
}
