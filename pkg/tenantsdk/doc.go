/*
Package tenantsdk provides a client SDK for the Sideline tenancy service.

# Overview

The package is organized around two main types:

  - SDKClient: unauthenticated operations (bootstrap, register, login)
  - Session: authenticated operations bound to one access token

Create an SDKClient to interact with public endpoints and mint sessions:

	client := tenantsdk.NewSDKClient("https://api.sideline.app")

	// One-time platform setup
	boot, err := client.Bootstrap(ctx, tenantsdk.BootstrapRequest{...})

	// Create an account and session
	session, err := client.Register(ctx, tenantsdk.RegisterRequest{...})

	// Or log in to an existing account
	session, err = client.Login(ctx, "owner@example.com", "password")

Use a Session for authenticated work:

	team, err := session.CreateTeam(ctx, tenantsdk.CreateTeamRequest{
		Name:      "Eagles",
		Subdomain: "eagles",
	})

	// Address the team by subdomain instead of id
	current, err := session.CurrentTeam(ctx, tenantsdk.WithHost("eagles.sideline.app"))

	// Hand the team over
	init, err := session.InitiateTransfer(ctx, team.ID, tenantsdk.InitiateTransferRequest{
		TargetEmail: "successor@example.com",
	})
	// ...give init.Token to the successor...
	done, err := successorSession.CompleteTransfer(ctx, init.Token)

Sessions do not refresh themselves. Access tokens embed the user's membership
list, so after a role change or a completed transfer the client calls
Session.RefreshContext (or logs in again) to pick up the new claims.

# Errors

Every non-2xx response unmarshals into *APIError carrying a stable
machine-readable code. Branch with errors.As:

	var apiErr *tenantsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == tenantsdk.ErrorCodeTransferExpired {
		// offer to initiate a fresh transfer
	}
*/
package tenantsdk
