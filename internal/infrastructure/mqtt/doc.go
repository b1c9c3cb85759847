// Package mqtt publishes Vidyank events to an MQTT broker.
//
// Core only publishes: authentication and administration events go out on
// <prefix>/auth/<action> so other services (notification workers, dashboards)
// can follow sign-ins without polling the API. Core's own presence is
// announced on <prefix>/system/status, with a Last Will so the broker marks
// it offline after a crash.
//
// The broker is optional. When mqtt.enabled is false nothing here is used.
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topics := mqtt.NewTopics(cfg.MQTT.TopicPrefix)
//	err = client.Publish(topics.AuthEvent("login_succeeded"), payload, 1, false)
package mqtt
