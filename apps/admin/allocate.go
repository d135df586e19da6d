package main

import (
	"context"
	"fmt"

	"github.com/trezcool/ratiba/core/allocation"
)

func (cli *commandLine) allocate(req allocation.Request) error {
	res, err := cli.allocSvc.AllocateGrade(context.Background(), req)
	if err != nil {
		return err
	}
	if !cli.humanOutput() {
		return cli.printJSON(res)
	}

	fmt.Fprintf(cli.out, "assigned: %d, unassigned: %d\n\n", res.AssignedCount, res.UnassignedCount)
	tw := cli.newTable()
	fmt.Fprintln(tw, "CLASS\tASSIGNED\tREMAINING")
	for _, c := range res.Classes {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", c.Name, c.Assigned, c.Remaining)
	}
	return tw.Flush()
}
