package main

import (
	"context"
	"fmt"

	"github.com/trezcool/ratiba/core/workload"
)

func (cli *commandLine) estimate(req workload.Request) error {
	est, err := cli.estimator.EstimateTeachers(context.Background(), req)
	if err != nil {
		return err
	}
	if !cli.humanOutput() {
		return cli.printJSON(est)
	}

	fmt.Fprintf(cli.out, "%s, weekly load %d: %d subject teachers needed\n\n", est.Year, est.WeeklyLoad, est.TotalTeachersNeeded)
	tw := cli.newTable()
	fmt.Fprintln(tw, "SUBJECT\tPERIODS\tPER CLASS\tCLASSES\tMAX CLASSES\tTEACHERS")
	for _, s := range est.Subjects {
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%d\t%d\t%d\n",
			s.SubjectName, s.TotalPeriods, s.PeriodsPerClassPerWeek, s.ClassCount, s.MaxClassesPerTeacher, s.TeachersNeeded)
	}
	if err = tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "\nhomeroom teachers: %d (weekly load %d)\n", est.HomeroomTeachersNeeded, est.HomeroomWeeklyLoad)
	fmt.Fprintf(cli.out, "department heads: %d (weekly load %d)\n", est.DeptHeadsNeeded, est.DeptHeadWeeklyLoad)
	return nil
}
