package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/goccy/go-yaml"
	"github.com/maruel/natural"
	"github.com/spf13/cobra"

	"github.com/mlcore/hindley/internal/elaborate"
	"github.com/mlcore/hindley/internal/env"
	"github.com/mlcore/hindley/internal/hostconfig"
	"github.com/mlcore/hindley/internal/sexp"
	"github.com/mlcore/hindley/internal/types"
	"github.com/mlcore/hindley/internal/valueparser"
)

var checkManifestPath string

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Elaborate a source file and dump the resulting environment",
	Long: `check reads a sequence of top-level forms (declare, define-type,
define, or a begin group of these), elaborates them in order, and prints
the derived types of every term and data type as YAML.

If no file is provided, reads from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkManifestPath, "manifest", "", "host macro manifest JSON file")
}

func runCheck(cmd *cobra.Command, args []string) error {
	source, err := readInput(args)
	if err != nil {
		return err
	}

	host, err := loadHost(checkManifestPath)
	if err != nil {
		return err
	}

	forms, err := sexp.ParseAll(source)
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}

	e := env.New()
	descriptors, warnings, err := elaborate.ElaborateAll(e, host, forms)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.Error())
	}
	if err != nil {
		return fmt.Errorf("elaborating: %w", err)
	}

	out, err := yaml.Marshal(buildDump(e, descriptors))
	if err != nil {
		return fmt.Errorf("rendering dump: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func readInput(args []string) (string, error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func loadHost(manifestPath string) (elaborate.Host, error) {
	if manifestPath == "" {
		return valueparser.NoMacros{}, nil
	}
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", manifestPath, err)
	}
	m, err := hostconfig.Load(string(data))
	if err != nil {
		return nil, fmt.Errorf("loading manifest %s: %w", manifestPath, err)
	}
	return m, nil
}

// dump is the YAML-serialisable shape printed by "hmc check"; it is a
// presentation of env.Environment's two tables, not the code generator's
// descriptor wire format (the descriptors themselves carry live AST and
// Type pointers that don't serialise meaningfully).
type dump struct {
	Terms []termDump `yaml:"terms"`
	Types []typeDump `yaml:"types"`
}

type termDump struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Kind string `yaml:"kind"`
}

type typeDump struct {
	Name       string      `yaml:"name"`
	Arity      int         `yaml:"arity"`
	Ctors      []ctorDump  `yaml:"ctors,omitempty"`
}

type ctorDump struct {
	Name          string `yaml:"name"`
	Type          string `yaml:"type"`
	PredicateName string `yaml:"predicateName"`
}

func buildDump(e *env.Environment, descriptors []*elaborate.Descriptor) dump {
	kindByName := make(map[string]string, len(descriptors))
	for _, d := range descriptors {
		if d.Kind == elaborate.DescribeDefine || d.Kind == elaborate.DescribeAssign {
			kindByName[d.Name] = descriptorKindName(d.Kind)
		}
	}

	termNames := e.TermNames()
	natural.Sort(termNames)
	terms := make([]termDump, 0, len(termNames))
	for _, name := range termNames {
		info := e.LookupTerm(name)
		terms = append(terms, termDump{
			Name: name,
			Type: types.String(info.Scheme()),
			Kind: kindByName[name],
		})
	}

	tyConNames := e.TyConNames()
	natural.Sort(tyConNames)
	typeDumps := make([]typeDump, 0, len(tyConNames))
	for _, name := range tyConNames {
		tc := e.LookupTyCon(name)
		ctors := make([]ctorDump, len(tc.Ctors))
		for i, c := range tc.Ctors {
			ctorType := ""
			if info := e.LookupTerm(c.Name); info != nil {
				ctorType = types.String(info.Scheme())
			}
			ctors[i] = ctorDump{Name: c.Name, Type: ctorType, PredicateName: c.PredicateName}
		}
		sort.Slice(ctors, func(i, j int) bool { return natural.Less(ctors[i].Name, ctors[j].Name) })
		typeDumps = append(typeDumps, typeDump{Name: name, Arity: tc.Arity, Ctors: ctors})
	}

	return dump{Terms: terms, Types: typeDumps}
}

func descriptorKindName(k elaborate.DescriptorKind) string {
	switch k {
	case elaborate.DescribeDefine:
		return "define"
	case elaborate.DescribeAssign:
		return "assign"
	case elaborate.DescribeDataType:
		return "data-type"
	default:
		return "declare"
	}
}
