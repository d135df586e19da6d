package main

import (
	"fmt"

	"github.com/google/uuid"

	echoapi "github.com/trezcool/ratiba/apps/api/echo"
	"github.com/trezcool/ratiba/core"
)

// token prints a signed admin JWT for the API.
func (cli *commandLine) token(uname, email string) error {
	actor := core.Actor{
		ID:       uuid.NewSHA1(uuid.NameSpaceOID, []byte(core.CleanString(uname, true))).String(),
		Username: core.CleanString(uname, true),
		Email:    core.CleanString(email, true),
	}
	tkn, err := echoapi.GenerateToken(cli.conf, echoapi.GetAdminClaims(cli.conf, actor))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cli.out, tkn)
	return err
}
