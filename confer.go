package main

import (
	"bytes"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/wansing/confer/auth"
	"github.com/wansing/confer/backend"
	"github.com/wansing/confer/core"
	"github.com/wansing/confer/filestore"
	"github.com/wansing/confer/sqldb"
	"github.com/wansing/confer/sqldb/mysql"
	"github.com/wansing/confer/sqldb/sqlite3"
	"github.com/wansing/confer/util"
	"github.com/xo/dburl"
	"golang.org/x/crypto/ssh/terminal"
)

const defaultDBURL = "sqlite3:confer.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL&cache=shared"

func init() {
	log.SetFlags(0) // no log prefixes, on most systems systemd-journald adds them
}

func main() {

	var dbArg string // is in both FlagSets

	// default FlagSet

	// Your reverse proxy must not strip the prefix. So if you're using nginx, the "proxy_pass" value should not end with a slash.
	var base = flag.String("base", "", "strip off this `prefix` from every HTTP request and prepend it to every link")
	var config = flag.String("config", "", "load site configuration from this ini `file`")
	// MySQL: collation should be utf8mb4_unicode_ci
	flag.StringVar(&dbArg, "db", defaultDBURL, "sql database url, see github.com/xo/dburl")
	var documentsDir = flag.String("documents", "documents", "store paper documents in this `directory`")
	var hmacKey = flag.String("hmac", "", "use this secret HMAC `key` for signing capability links")
	var listenAddr = flag.String("listen", "127.0.0.1:8080", "serve HTTP content at this `ip:port`")

	// init FlagSet

	var initFlags = flag.NewFlagSet("init", flag.ExitOnError)

	initFlags.StringVar(&dbArg, "db", defaultDBURL, "sql database url, see github.com/xo/dburl") // copied from above
	var initInsertUser = initFlags.Bool("insert-user", false, "creates the given user and prompts for a password")
	var initMakePC = initFlags.Bool("make-pc", false, "adds the given user to the program committee")
	var initMakeChair = initFlags.Bool("make-chair", false, "makes the given user a chair")
	var initTag = initFlags.String("tag", "", "adds this contact `tag` to the given user")
	var username = initFlags.String("user", "", "specifies a user `name`")

	if len(os.Args) > 1 && os.Args[1] == "init" {
		initFlags.Parse(os.Args[2:])
	} else {
		flag.Parse()
	}

	// database

	dbURL, err := dburl.Parse(dbArg)
	if err != nil {
		log.Printf("could not parse database url: %v", err)
		return
	}

	sqlDB, err := sql.Open(dbURL.Driver, dbURL.DSN)
	if err != nil {
		log.Printf("could not open sql database: %v", err)
		return
	}

	if err = sqlDB.Ping(); err != nil {
		log.Printf("could not ping sql database: %v", err)
		return
	}

	log.Printf("using database %s", dbURL.String())

	// base

	*base = strings.Trim(*base, "/")
	if *base != "" {
		*base = "/" + *base
	}

	// assemble stuff

	var sessionStore scs.Store
	var insertIgnore string
	switch dbURL.Driver {
	case "mysql":
		sessionStore = mysql.NewSessionStore(sqlDB)
		insertIgnore = mysql.InsertIgnore
	case "sqlite3":
		sessionStore = sqlite3.NewSessionStore(sqlDB)
		insertIgnore = sqlite3.InsertIgnore
	default:
		log.Printf("unknown database backend: %s", dbURL.Driver)
		return
	}

	db := &core.CoreDB{}

	db.CapabilityDB = sqldb.NewCapabilityDB(sqlDB)
	db.ConflictDB = sqldb.NewConflictDB(sqlDB)
	db.PaperDB = sqldb.NewPaperDB(sqlDB, insertIgnore)
	db.ReviewDB = sqldb.NewReviewDB(sqlDB)
	db.SettingDB = sqldb.NewSettingDB(sqlDB)
	db.TrackDB = sqldb.NewTrackDB(sqlDB)
	db.UserDB = sqldb.NewUserDB(sqlDB)

	db.HMACSecret = *hmacKey

	if *config != "" {
		if err := applyConfig(db, *config); err != nil {
			log.Printf("error loading config: %v", err)
			return
		}
	}

	if err := db.Init(sessionStore, *base); err != nil {
		log.Println(err) // log.Fatalln would not run deferred functions
		return
	}

	defer func() {
		log.Println("closing database")
		sqlDB.Close()
	}()

	// init

	if initFlags.Parsed() {
		if *username == "" {
			log.Println("init requires -user")
			return
		}
		switch {
		case *initInsertUser:
			insertUser(db, *username)
		case *initMakePC:
			addRole(db, *username, auth.PC)
		case *initMakeChair:
			addRole(db, *username, auth.Chair)
		case *initTag != "":
			addTag(db, *username, *initTag)
		}
		return
	}

	listen(db, filestore.NewStore(*documentsDir), *listenAddr, *base)
}

// applyConfig reads site settings from an ini file. Only the "hmac" key is
// understood besides the setting and deadline names.
func applyConfig(db *core.CoreDB, path string) error {
	keys, err := util.Ini(path)
	if err != nil {
		return err
	}
	for key, value := range keys {
		if key == "hmac" {
			if db.HMACSecret == "" {
				db.HMACSecret = value
			}
			continue
		}
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			// deadlines may be given as timestamps or as dates
			i, err = util.ParseTime(value)
			if err != nil {
				return fmt.Errorf("config key %s: %v", key, err)
			}
		}
		if err := db.SetSetting(key, i); err != nil {
			return err
		}
	}
	return nil
}

func insertUser(db *core.CoreDB, name string) {

	fmt.Printf("password for user %s: ", name)
	pass1, err := terminal.ReadPassword(0)
	fmt.Println()
	if err != nil {
		log.Printf("error reading password: %v", err)
		return
	}

	fmt.Printf("repeat password: ")
	pass2, err := terminal.ReadPassword(0)
	fmt.Println()
	if err != nil {
		log.Printf("error reading password: %v", err)
		return
	}

	if !bytes.Equal(pass1, pass2) {
		log.Printf("passwords don't match")
		return
	}

	user, err := db.UserDB.InsertUser(name)
	if err != nil {
		log.Printf("error creating user %s: %v", name, err)
		return
	}

	if err := db.SetPassword(user, string(pass1)); err != nil {
		log.Printf("error setting password: %v", err)
		return
	}
}

func addRole(db *core.CoreDB, username string, role auth.Role) {

	user, err := db.UserDB.GetUserByName(username)
	if err != nil {
		log.Printf("error getting user %s: %v", username, err)
		return
	}

	if err := db.SetRoles(user, user.Roles()|role); err != nil {
		log.Printf("error setting roles: %v", err)
		return
	}
}

func addTag(db *core.CoreDB, username string, tag string) {

	user, err := db.UserDB.GetUserByName(username)
	if err != nil {
		log.Printf("error getting user %s: %v", username, err)
		return
	}

	var tags = user.ContactTags()
	tags[strings.ToLower(tag)] = 0

	if err := db.SetContactTags(user, tags); err != nil {
		log.Printf("error setting tags: %v", err)
		return
	}
}

func listen(db *core.CoreDB, docs *filestore.Store, addr string, base string) {

	// mux
	//
	// golang mux recovers from panics, so the program won't crash

	util.HandlePrefix(http.DefaultServeMux, base+"/assets", http.FileServer(http.Dir("assets")))
	util.HandlePrefix(http.DefaultServeMux, base+"/static", http.FileServer(http.Dir("static")))
	util.HandlePrefix(http.DefaultServeMux, base, backend.NewRouter(db, docs, base))

	// listener and listen

	sigintChannel := make(chan os.Signal, 1)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Println(err)
		return
	}

	log.Printf("listening to %s", addr)

	httpSrv := &http.Server{
		Handler:      db.SessionManager.LoadAndSave(http.DefaultServeMux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := httpSrv.Serve(listener); err != nil {

			// don't panic, we want a graceful shutdown
			if err != http.ErrServerClosed {
				log.Printf("error listening: %v", err)
			}

			// ensure graceful shutdown
			sigintChannel <- os.Interrupt
		}
	}()

	// graceful shutdown

	signal.Notify(sigintChannel, os.Interrupt, syscall.SIGTERM) // SIGINT (Interrupt) or SIGTERM
	<-sigintChannel

	log.Println("shutting down")
	httpSrv.Close()
}
