package phase

// ModulePhase tracks the compilation phase of an individual source file
//
// Phase progression is sequential:
// NotStarted -> Lexed -> Parsed -> Defined -> Lowered -> CodeGen
//
// Defined means the file's functions and structs are in the symbol tables;
// Lowered means every function body in the file has been turned into IR.
type ModulePhase int

const (
	PhaseNotStarted ModulePhase = iota // File discovered but not processed
	PhaseLexed                         // Tokens generated
	PhaseParsed                        // AST built
	PhaseDefined                       // Signatures and layouts registered
	PhaseLowered                       // Bodies lowered to IR
	PhaseCodeGen                       // Backend output written
)

// PhasePrerequisites maps each phase to its required predecessor phase
var PhasePrerequisites = map[ModulePhase]ModulePhase{
	PhaseLexed:   PhaseNotStarted,
	PhaseParsed:  PhaseLexed,
	PhaseDefined: PhaseParsed,
	PhaseLowered: PhaseDefined,
	PhaseCodeGen: PhaseLowered,
}

func (p ModulePhase) String() string {
	switch p {
	case PhaseNotStarted:
		return "NotStarted"
	case PhaseLexed:
		return "Lexed"
	case PhaseParsed:
		return "Parsed"
	case PhaseDefined:
		return "Defined"
	case PhaseLowered:
		return "Lowered"
	case PhaseCodeGen:
		return "CodeGen"
	default:
		return "Unknown"
	}
}
