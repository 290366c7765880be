// Package mqtt implements the agent.Transport interface on top of the
// Eclipse Paho client.
package mqtt

// The device subscribes to `<prefix>/settings/#` and treats everything
// under it as a command:
//
// read a setting (empty payload)
// mosquitto_pub -t 'dt/example/device/settings/channels/1/enabled' -n
//
// write a setting
// mosquitto_pub -t 'dt/example/device/settings/gain' -m '0.5'
//
// observe current values (republished retained after every reconnect)
// mosquitto_sub -t 'dt/example/device/settings/#'
//
// failed commands produce a {path, kind, message} report on the
// reserved error sibling:
// mosquitto_sub -t 'dt/example/device/settings/gain/error'
