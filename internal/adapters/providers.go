package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/emerald/internal/adapters/blockchain"
	"github.com/trebuchet-org/emerald/internal/adapters/compiler"
	"github.com/trebuchet-org/emerald/internal/adapters/fs"
	"github.com/trebuchet-org/emerald/internal/adapters/interactive"
	"github.com/trebuchet-org/emerald/internal/adapters/ipfs"
	"github.com/trebuchet-org/emerald/internal/adapters/launcher"
	"github.com/trebuchet-org/emerald/internal/usecase"
)

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewArtifactStoreAdapter,
	wire.Bind(new(usecase.ArtifactRepository), new(*fs.ArtifactStoreAdapter)),

	fs.NewArtifactFinderAdapter,
	wire.Bind(new(usecase.ArtifactFinder), new(*fs.ArtifactFinderAdapter)),

	fs.NewPlanLoaderAdapter,
	wire.Bind(new(usecase.PlanLoader), new(*fs.PlanLoaderAdapter)),

	fs.NewLocalConfigStoreAdapter,
	wire.Bind(new(usecase.LocalConfigRepository), new(*fs.LocalConfigStoreAdapter)),
)

// BlockchainSet provides blockchain-based implementations
var BlockchainSet = wire.NewSet(
	blockchain.NewDeployerFactoryAdapter,
	wire.Bind(new(usecase.DeployerFactory), new(*blockchain.DeployerFactoryAdapter)),

	blockchain.NewCheckerAdapter,
	wire.Bind(new(usecase.DeploymentChecker), new(*blockchain.CheckerAdapter)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewConfirmerAdapter,
	wire.Bind(new(usecase.RedeployConfirmer), new(*interactive.ConfirmerAdapter)),
)

// ToolsSet provides the compiler, IPFS and launcher implementations
var ToolsSet = wire.NewSet(
	compiler.NewSolcAdapter,
	wire.Bind(new(usecase.ContractCompiler), new(*compiler.SolcAdapter)),

	ipfs.NewClientAdapter,
	wire.Bind(new(usecase.IPFSUploader), new(*ipfs.ClientAdapter)),

	launcher.NewLauncherAdapter,
	wire.Bind(new(usecase.ToolLauncher), new(*launcher.LauncherAdapter)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	FSSet,
	BlockchainSet,
	InteractiveSet,
	ToolsSet,
)
