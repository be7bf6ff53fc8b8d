package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"

	"github.com/Jds-23/curly-octo-memory/clients/mintapi"
	"github.com/Jds-23/curly-octo-memory/db"
	"github.com/Jds-23/curly-octo-memory/handlers/api"
	"github.com/Jds-23/curly-octo-memory/handlers/middleware"
	"github.com/Jds-23/curly-octo-memory/metrics"
	"github.com/Jds-23/curly-octo-memory/rpc"
	"github.com/Jds-23/curly-octo-memory/services"
	"github.com/Jds-23/curly-octo-memory/types"
	"github.com/Jds-23/curly-octo-memory/utils"
)

func main() {
	configPath := flag.String("config", "", "Path to the config file, if empty string defaults will be used")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := &types.Config{}
	err := utils.ReadConfig(cfg, *configPath)
	if err != nil {
		logrus.Fatalf("error reading config file: %v", err)
	}
	utils.Config = cfg
	logger := utils.InitLogger()

	logger.WithFields(logrus.Fields{
		"config":  *configPath,
		"version": utils.BuildVersion,
		"release": utils.BuildRelease,
	}).Printf("starting")

	db.MustInitDB()
	err = db.ApplyEmbeddedDbSchema(-2)
	if err != nil {
		logger.Fatalf("error initializing db schema: %v", err)
	}

	clientPool := rpc.NewPool(cfg.Chains)
	go clientPool.VerifyChainIds(ctx)

	err = services.StartTokenService(db.NewKeyValueStore())
	if err != nil {
		logger.Fatalf("error starting token service: %v", err)
	}

	mintClient := mintapi.NewClient(cfg.MintApi.Endpoint, cfg.MintApi.ApiKey, cfg.MintApi.Timeout)
	err = services.StartMintService(mintClient, func(ctx context.Context, chainId string) (services.ChainClient, error) {
		return clientPool.GetClient(ctx, chainId)
	})
	if err != nil {
		logger.Fatalf("error starting mint service: %v", err)
	}

	if cfg.RateLimit.Enabled {
		err = services.StartCallRateLimiter(cfg.RateLimit.ProxyCount, cfg.RateLimit.Rate, cfg.RateLimit.Burst)
		if err != nil {
			logger.Fatalf("error starting call rate limiter: %v", err)
		}
	}

	if cfg.Metrics.Enabled && !cfg.Metrics.Public {
		err = metrics.StartMetricsServer(logger.WithField("module", "metrics"), cfg.Metrics.Host, cfg.Metrics.Port)
		if err != nil {
			logger.Fatalf("error starting metrics server: %v", err)
		}
	}

	err = startWebserver(logger)
	if err != nil {
		logger.Fatalf("error starting webserver: %v", err)
	}

	utils.WaitForCtrlC()
	logger.Println("exiting...")
	db.MustCloseDB()
}

func startWebserver(logger logrus.FieldLogger) error {
	router := mux.NewRouter()

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(middleware.CorsMiddleware)
	apiRouter.Use(middleware.NewTokenAuthMiddleware().Middleware)
	apiRouter.Use(middleware.NewRateLimitMiddleware().Middleware)

	apiRouter.HandleFunc("/tokens/search", api.ApiTokenSearchV1).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/tokens/balances/{address}", api.ApiTokenBalancesV1).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/tokens/history/{owner}", api.ApiTokenHistoryV1).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/tokens/history/{owner}", api.ApiTokenHistoryClearV1).Methods("DELETE")
	apiRouter.HandleFunc("/tokens/history/{owner}/select", api.ApiTokenSelectV1).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/chains", api.ApiChainsV1).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/mint", api.ApiMintCreateV1).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/mint/{id}", api.ApiMintStatusV1).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/mint/{id}/execute", api.ApiMintExecuteV1).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/mint/{id}/reset", api.ApiMintResetV1).Methods("POST", "OPTIONS")

	if utils.Config.Metrics.Enabled && utils.Config.Metrics.Public {
		router.Path("/metrics").Handler(metrics.GetMetricsHandler())
	}

	if utils.Config.Server.Pprof {
		// add pprof handler
		router.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	}

	n := negroni.New()
	n.Use(negroni.NewRecovery())
	n.UseHandler(router)

	if utils.Config.Server.HttpWriteTimeout == 0 {
		utils.Config.Server.HttpWriteTimeout = time.Second * 15
	}
	if utils.Config.Server.HttpReadTimeout == 0 {
		utils.Config.Server.HttpReadTimeout = time.Second * 15
	}
	if utils.Config.Server.HttpIdleTimeout == 0 {
		utils.Config.Server.HttpIdleTimeout = time.Second * 60
	}
	srv := &http.Server{
		Addr:         utils.Config.Server.Host + ":" + utils.Config.Server.Port,
		WriteTimeout: utils.Config.Server.HttpWriteTimeout,
		ReadTimeout:  utils.Config.Server.HttpReadTimeout,
		IdleTimeout:  utils.Config.Server.HttpIdleTimeout,
		Handler:      n,
	}

	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}

	logger.Printf("http server listening on %v", srv.Addr)
	go func() {
		err := srv.Serve(listener)
		if err != nil {
			logger.WithError(err).Fatal("error serving http")
		}
	}()

	return nil
}
