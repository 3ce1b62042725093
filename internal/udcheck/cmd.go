package udcheck

import (
	"errors"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/internal/util"
)

var (
	FlagConfigFilePath string
	FlagJson           bool
	FlagVerbose        bool

	// Explicit submission values; anything set here outranks the
	// script's directives, exactly as sbatch flags outrank them.
	FlagAccount     string
	FlagPartition   string
	FlagQos         string
	FlagReservation string
	FlagJobName     string
	FlagStdoutPath  string
	FlagStderrPath  string
	FlagTime        string
	FlagMemPerCpu   uint64
	FlagGres        string
	FlagNTasks      uint32
	FlagCpusPerTask uint16

	FlagUid uint32
	FlagGid uint32

	FlagStoredAccount string

	RootCmd = &cobra.Command{
		Use:   "udcheck [flags] script",
		Short: "Dry-run the UD job-submission normalization against a job script",
		Long: "udcheck runs a job script through the same GridEngine directive\n" +
			"translation and site policy pipeline the submission plugin applies,\n" +
			"and reports the job record that would reach the scheduler.",
		Args: cobra.ExactArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if FlagVerbose {
				level = log.TraceLevel
			}
			util.InitLogger(level)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunCheck(args[0], os.Stdout)
		},
	}

	modifyCmd = &cobra.Command{
		Use:   "modify [flags] expression...",
		Short: "Evaluate job-modification expressions against a stored job",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("at least one key=value expression is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunModify(args, os.Stdout)
		},
	}
)

func ParseCmdArgs() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(util.ErrCode(err))
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&FlagConfigFilePath, "config", "C", "",
		"Path to the site policy configuration file")
	RootCmd.PersistentFlags().BoolVar(&FlagJson, "json", false, "Output in JSON format")
	RootCmd.PersistentFlags().BoolVarP(&FlagVerbose, "verbose", "v", false, "Trace the pipeline's decisions")

	RootCmd.Flags().StringVarP(&FlagAccount, "account", "A", "", "Account explicitly requested for the job")
	RootCmd.Flags().StringVarP(&FlagPartition, "partition", "p", "", "Partition(s) explicitly requested (comma separated)")
	RootCmd.Flags().StringVarP(&FlagQos, "qos", "q", "", "QOS explicitly requested")
	RootCmd.Flags().StringVarP(&FlagReservation, "reservation", "r", "", "Reservation the job runs under")
	RootCmd.Flags().StringVarP(&FlagJobName, "job-name", "J", "", "Name of job")
	RootCmd.Flags().StringVarP(&FlagStdoutPath, "output", "o", "", "Redirection path of standard output")
	RootCmd.Flags().StringVarP(&FlagStderrPath, "error", "e", "", "Redirection path of standard error")
	RootCmd.Flags().StringVarP(&FlagTime, "time", "t", "", "Time limit as minutes or hours:minutes:seconds")
	RootCmd.Flags().Uint64Var(&FlagMemPerCpu, "mem-per-cpu", 0, "Memory per allocated CPU, MiB")
	RootCmd.Flags().StringVar(&FlagGres, "gres", "", "Generic resources, e.g. \"gpu:a100:1\" or \"gpu:1\"")
	RootCmd.Flags().Uint32VarP(&FlagNTasks, "ntasks", "n", 0, "Number of tasks explicitly requested")
	RootCmd.Flags().Uint16VarP(&FlagCpusPerTask, "cpus-per-task", "c", 0, "CPUs per task explicitly requested")
	RootCmd.Flags().Uint32Var(&FlagUid, "uid", uint32(os.Getuid()), "Submitting uid to simulate")
	RootCmd.Flags().Uint32Var(&FlagGid, "gid", uint32(os.Getgid()), "Submitting gid to simulate")

	modifyCmd.Flags().StringVar(&FlagStoredAccount, "stored-account", "", "Account of the already-admitted job")
	RootCmd.AddCommand(modifyCmd)
}
