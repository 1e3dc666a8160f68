package main

import (
	"fmt"

	"github.com/toeirei/vaultmaster/internal/db"
	"github.com/toeirei/vaultmaster/internal/i18n"
	"github.com/toeirei/vaultmaster/internal/model"
	"github.com/toeirei/vaultmaster/internal/vault"
)

// vault_probe spins up an in-memory vault, runs a few mutations through the
// full crypto path and prints what came back. Handy for eyeballing store and
// cipher behavior without touching a real vault file.
func main() {
	dsn := "file:vaultprobe?mode=memory&cache=shared"
	i18n.Init("en")
	store, err := db.New("sqlite", dsn)
	if err != nil {
		panic(err)
	}
	defer func() { _ = store.Close() }()

	v := vault.New(store)
	const master = "probe-master-password"
	if _, err := v.Initialize(master); err != nil {
		panic(err)
	}

	if _, err := v.AddCredential(master, model.Credential{Service: "probe-web", Username: "user1", Password: "pw1", Notes: "probe row"}); err != nil {
		panic(err)
	}
	if _, err := v.AddCredential(master, model.Credential{Service: "probe-mail", Username: "user2", Password: "pw2"}); err != nil {
		panic(err)
	}

	services, err := v.ListServices()
	if err != nil {
		panic(err)
	}
	fmt.Printf("services: %d\n", len(services))
	for _, s := range services {
		cred, err := v.GetCredential(master, s)
		if err != nil {
			panic(err)
		}
		fmt.Printf("credential: %s\n", cred)
	}

	entries, err := v.AuditLog()
	if err != nil {
		panic(err)
	}
	fmt.Printf("audit entries: %d\n", len(entries))
	for _, e := range entries {
		fmt.Printf("audit: %s %s\n", e.Action, e.Details)
	}
}
