package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fulldump/goconfig"

	"github.com/fulldump/accountsdb/bootstrap"
	"github.com/fulldump/accountsdb/configuration"
)

var banner = `
                                       _      _ _     
  __ _  ___ ___ ___  _   _ _ __  _| |_ ___  __| | |__  
 / _' |/ __/ __/ _ \| | | | '_ \|_   _/ __|/ _' | '_ \ 
| (_| | (_| (_| (_) | |_| | | | | | | \__ \ (_| | |_) |
 \__,_|\___\___\___/ \__,_|_| |_| |_| |___/\__,_|_.__/ 
                                    version ` + bootstrap.VERSION + `
`

func main() {

	c := configuration.Default()
	goconfig.Read(&c)

	if c.Version {
		fmt.Println("Version:", bootstrap.VERSION)
		return
	}

	if c.ShowBanner {
		fmt.Println(banner)
	}

	if c.ShowConfig {
		e := json.NewEncoder(os.Stdout)
		e.SetIndent("", "    ")
		e.Encode(c)
	}

	start, _, err := bootstrap.Bootstrap(&c)
	if err != nil {
		fmt.Println("ERROR:", err.Error())
		os.Exit(-1)
	}

	start()
}
